package greenapi

import (
	"fmt"
	"strings"
)

// Template names for enquiry follow-up messages.
const (
	TemplateNewEnquiry            = "new_enquiry"
	TemplateNewEnquiryPublicForm  = "new_enquiry_public_form"
	TemplateNoGST                 = "no_gst"
	TemplateGSTCancelled          = "gst_cancelled"
	TemplateWillShareDoc          = "will_share_doc"
	TemplateDocShared             = "doc_shared"
	TemplateVerifiedShortlisted   = "verified_shortlisted"
	TemplateNotEligible           = "not_eligible"
	TemplateNoMSME                = "no_msme"
	TemplateAadharPANMismatch     = "aadhar_pan_mismatch"
	TemplateMSMEGSTAddressDiffers = "msme_gst_address_different"
	TemplateWillCallBack          = "will_call_back"
	TemplatePersonalLoan          = "personal_loan"
	TemplateStartup               = "startup"
	TemplateLessThan5Lakhs        = "less_than_5_lakhs"
	TemplateFirstCallCompleted    = "first_call_completed"
	TemplateSecondCallCompleted   = "second_call_completed"
	TemplateThirdCallCompleted    = "third_call_completed"
	TemplateSwitchOff             = "switch_off"
	TemplateNotConnected          = "not_connected"
	TemplateByMistake             = "by_mistake"
)

// TemplateData carries the values substituted into message templates.
type TemplateData struct {
	WatiName       string
	BusinessNature string
}

// Render fills the named template with the given data. Missing names fall
// back to neutral wording rather than leaving placeholders in the message.
func Render(name string, data TemplateData) (string, error) {
	tmpl, ok := messageTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown message template %q", name)
	}

	watiName := data.WatiName
	if watiName == "" {
		watiName = "Customer"
	}
	businessNature := data.BusinessNature
	if businessNature == "" {
		businessNature = "your business"
	}

	r := strings.NewReplacer(
		"{wati_name}", watiName,
		"{business_nature}", businessNature,
	)
	return r.Replace(tmpl), nil
}

// TemplateForComment maps an enquiry comment to the template that should
// be sent for it. Matching is case-insensitive substring in priority
// order; unknown comments fall back to the welcome template.
func TemplateForComment(comment string) string {
	c := strings.ToLower(strings.TrimSpace(comment))

	// Order matters: longer phrases first so "doc shared(yet to verify)"
	// never matches a shorter key like "verified".
	mappings := []struct {
		key      string
		template string
	}{
		{"no gst", TemplateNoGST},
		{"gst cancelled", TemplateGSTCancelled},
		{"will share doc", TemplateWillShareDoc},
		{"doc shared(yet to verify)", TemplateDocShared},
		{"doc shared", TemplateDocShared},
		{"verified(shortlisted)", TemplateVerifiedShortlisted},
		{"verified shortlisted", TemplateVerifiedShortlisted},
		{"verified", TemplateVerifiedShortlisted},
		{"shortlisted", TemplateVerifiedShortlisted},
		{"not eligible", TemplateNotEligible},
		{"no msme", TemplateNoMSME},
		{"aadhar/pan name mismatch", TemplateAadharPANMismatch},
		{"msme/gst address different", TemplateMSMEGSTAddressDiffers},
		{"will call back", TemplateWillCallBack},
		{"personal loan", TemplatePersonalLoan},
		{"start up", TemplateStartup},
		{"startup", TemplateStartup},
		{"asking less than 5 lakhs", TemplateLessThan5Lakhs},
		{"1st call completed", TemplateFirstCallCompleted},
		{"2nd call completed", TemplateSecondCallCompleted},
		{"3rd call completed", TemplateThirdCallCompleted},
		{"switch off", TemplateSwitchOff},
		{"not connected", TemplateNotConnected},
		{"by mistake", TemplateByMistake},
	}

	for _, m := range mappings {
		if strings.Contains(c, m.key) {
			return m.template
		}
	}
	return TemplateNewEnquiry
}

// StaffAssignmentMessages returns the three-message introduction sequence
// sent to a customer when a staff member picks up their enquiry.
func StaffAssignmentMessages(staffName string) []string {
	intro := fmt.Sprintf(`Hi Sir/Madam

This is %s

How can I help you

We provide collateral free loan for all kinds of businesses based on transactions

Loan from 5 lacs to 5 crores - GST is must

Working Hours : 10.00AM - 6.00PM`, staffName)

	return []string{
		intro,
		"Could you please tell us about your business and its nature",
		"And what is the loan amount you require",
	}
}

var messageTemplates = map[string]string{
	TemplateNewEnquiry: `Hi {wati_name}👋 Welcome to Business Guru Loans!

Get ₹10 Lakhs in 24 hours for your business:

✅ 1% monthly interest (Lowest in market!)

✅ Zero collateral or CIBIL checks

✅ New startups welcome

Apply Now: https://tmis-business-guru.vercel.app/new-enquiry

✨ Special Benefits:

- 0% processing fees (First 50 applicants)

- Flexible repayment: 1-5 years

🏆 Trusted by 2,500+ businesses

📱 Ready to grow?
Apply Now: https://tmis-business-guru.vercel.app/new-enquiry

Your success journey begins now! 🚀

*Please click on any option below:*

🔗 Get Loan: https://wa.me/918106811285?text=Get%20Loan

🔗 Check Eligibility: https://wa.me/918106811285?text=Check%20Eligibility

🔗 More Details: https://wa.me/918106811285?text=More%20Details`,

	TemplateNewEnquiryPublicForm: `Hi {wati_name}👋 Welcome to Business Guru Loans!

Get ₹10 Lakhs in 24 hours for your business:

✅ 1% monthly interest (Lowest in market!)

✅ Zero collateral or CIBIL checks

✅ New startups welcome

✨ Special Benefits:

- 0% processing fees (First 50 applicants)

- Flexible repayment: 1-5 years

🏆 Trusted by 2,500+ businesses

Your success journey begins now! 🚀

*Please click on any option below:*

🔗 Get Loan: https://wa.me/918106811285?text=Get%20Loan

🔗 Check Eligibility: https://wa.me/918106811285?text=Check%20Eligibility

🔗 More Details: https://wa.me/918106811285?text=More%20Details`,

	TemplateNoGST: `Hii {wati_name} sir/madam! 🙏

We regret to inform you that we're unable to process your loan application at this time due to the absence of GST registration. GST registration is a mandatory requirement for our collateral loan services as it helps us verify your business credentials and compliance status. We recommend you to register for GST at the earliest convenience through the official portal. Once you've completed your GST registration, please contact us again so we can proceed with your application.

Thank you for your understanding! 📋❌`,

	TemplateGSTCancelled: `Hii {wati_name} sir/madam! 🙏

We've noticed that your GST status is currently showing as cancelled in our records. To proceed with your loan application, we require an active GST registration with proper compliance. We kindly request you to reactivate your GST by filling out your previous GST forms and completing all necessary formalities with the tax authorities. Once your GST status is active again, please inform us immediately so we can continue processing your application without any delays.

Thank you for your prompt attention to this matter! 📝🔄`,

	TemplateWillShareDoc: `Hii {wati_name} sir/madam! 🙏

Thank you for your interest in Business Guru! To proceed with verification of your loan application, we require the following documents:

1. Company/Business Registration
2. GST Document
3. Company Bank Account Details
4. Bank statement (6-12 months)
5. Website (Optional)
6. Owner's PAN & Aadhaar
7. Business PAN
8. Email ID & Mobile Number
9. IE Code (Optional)
10. Payment Gateway (Optional)
11. Business Photos (Name board, Products, Shop)

Please share these documents at your earliest convenience to avoid delays. 📂✅`,

	TemplateDocShared: `Hii {wati_name} sir/madam! 🙏

Thank you for sharing your documents with us! Our verification team is currently reviewing all the submitted documents to assess your eligibility for our collateral loan services. This comprehensive verification process typically takes 2-3 business days to complete. We'll notify you immediately if any additional documents are required or if there are any changes needed in the submitted documents.

Rest assured, our team is working diligently to process your application as quickly as possible.

Thank you for your patience! 📋🔍`,

	TemplateVerifiedShortlisted: `Hii {wati_name} sir/madam! 🎉

Congratulations! Your account has been successfully verified and shortlisted for our collateral loan program. This is a significant milestone in your loan application process with Business Guru. Our dedicated account manager will contact you within 2 working days to discuss the next steps, including detailed loan terms, competitive interest rates, processing fees, and disbursement procedures.

We're excited to partner with you and support your business growth journey.

Thank you! 🚀⭐`,

	TemplateNotEligible: `Hii {wati_name} sir/madam! 🙏

Thank you for reaching out to Business Guru. After carefully reviewing your application and business profile for {business_nature}, we regret to inform you that we're unable to provide a loan at this time. Our decision is based on our current lending criteria, risk assessment policies, and internal evaluation process.

We appreciate your interest in our services and encourage you to contact us again in the future as our policies may change.

Thank you for understanding! 📉❌`,

	TemplateNoMSME: `Hii {wati_name} sir/madam! 🙏

We're unable to proceed with your loan application as an MSME certificate is required for our collateral loan services. The MSME certificate is essential for us to categorize your business accurately and determine appropriate loan terms and benefits. We recommend you to apply for an MSME certificate through the official government portal Udyam Registration.

Once you've obtained your MSME certificate, please share it with us so we can move forward with your application process.

Thank you for your cooperation! 📄🔄`,

	TemplateAadharPANMismatch: `Hii {wati_name} sir/madam! 🙏

During document verification, we found a mismatch between your Aadhaar and PAN card names. This discrepancy must be resolved before proceeding with your loan application. Please update your PAN card name to exactly match your Aadhaar card without any variations. Also, verify that your date of birth matches on both documents. If there's a mismatch in the date of birth, that needs to be corrected through the appropriate authorities.

Once updated, please inform us so we can continue processing your application. 🔄📋`,

	TemplateMSMEGSTAddressDiffers: `Hii {wati_name} sir/madam! 🙏

Our verification team found an address mismatch between your GST and MSME certificates. For compliance purposes, these addresses need to be consistent in our records. We request you to update your MSME address to match exactly with your GST address as per official documentation. Please ensure all your business documents reflect the same address to avoid any processing delays. Once you've made the necessary updates to your MSME certificate, please notify us so we can proceed with your application.

Thank you for your attention! 📍📝`,

	TemplateWillCallBack: `Hii {wati_name} sir/madam! 📞

Thank you for your interest in Business Guru's collateral loan services. We appreciate your time and interest in our financial solutions. Currently, our representative is engaged with other calls, but we value your inquiry and want to ensure you receive proper attention and personalized service.

Please send a message to this number when you're available, and we'll call you back promptly to discuss your business loan requirements in detail.

Thank you for your understanding! 🕐💬`,

	TemplatePersonalLoan: `Hii {wati_name} sir/madam! 🙏

Thank you for reaching out to Business Guru. We appreciate your interest in our financial services. However, we want to inform you that we specialize exclusively in collateral business loans and do not provide personal loans at this time.

Our expertise lies in supporting businesses with working capital, expansion, and equipment financing through secured loan options. If you have any business-related financing needs, we'd be happy to assist you.

Thank you for understanding! 🏢❌`,

	TemplateStartup: `Hii {wati_name} sir/madam! 🙏

Thanks for reaching out to Business Guru. We appreciate your interest in our financial services. After careful consideration, we regret to inform you that we're currently unable to provide startup loans. Our collateral loan services are primarily designed for established businesses with proven track records and existing assets.

We encourage you to revisit our services once your business has been operational for a longer period. If you have any other business financing requirements, please let us know.

Thank you! 🚀`,

	TemplateLessThan5Lakhs: `Hii {wati_name} sir/madam! 🙏

We'd like to inform you about our loan policy regarding application amounts. Business Guru provides collateral loans ranging from 5 Lakhs to 5 Crores. Unfortunately, we're unable to process loan applications for amounts less than 5 Lakhs as they fall outside our current lending framework. We recommend consolidating your requirements or considering our services when your financing needs align with our specified range for better financial solutions.

Thank you for your understanding! 💰`,

	TemplateFirstCallCompleted: `Hii {wati_name} sir/madam! 📞

We've attempted to reach you regarding your loan application but were unable to connect with you. Our team tried calling but there was no response and the call went unanswered. We believe it's important to discuss your application details and address any queries you might have.

Please call us back at your earliest convenience so we can continue processing your application without any further delays.

Thank you! 🕐🔁`,

	TemplateSecondCallCompleted: `Hii {wati_name} sir/madam! 📞

This is our second attempt to reach you regarding your loan application. Unfortunately, we were unable to connect with you again. Our team tried calling but there was no response and the call went unanswered. It's crucial that we discuss your application to ensure all requirements are met.

We request you to call us back as soon as possible to avoid any delays in processing your application.

Thank you for your attention! 🕓🔁`,

	TemplateThirdCallCompleted: `Hii {wati_name} sir/madam! 📞

This is our final attempt to reach you regarding your loan application. We've tried contacting you multiple times but have been unsuccessful in connecting with you. Our team has made several calls, but there has been no response and the calls remain unanswered.

This is a critical step in your application process. Please call us back immediately to prevent cancellation of your application.

Thank you! ⏰❗`,

	TemplateSwitchOff: `Hii {wati_name} sir/madam! 📞

We've attempted to reach you regarding your loan application, but your phone number appears to be switched off. Our team tried calling but couldn't establish a connection. This prevents us from discussing important details about your application and addressing any questions you might have.

Please switch on your phone and call us back at your earliest convenience to continue with your application process.

Thank you! 📴🔁`,

	TemplateNotConnected: `Hii {wati_name} sir/madam! 📞

We've tried reaching you regarding your loan application, but your call is not connecting. Our team has made multiple attempts to call you, but the connection is not going through. This is preventing us from moving forward with your application and addressing any concerns you might have.

Please check your network connectivity and call us back as soon as possible to continue processing your application.

Thank you! 📶🔁`,

	TemplateByMistake: `Hii {wati_name} sir/madam! 🙏

We understand that your enquiry might have been submitted by mistake. No issues at all! We appreciate your transparency in informing us. Should you require any collateral loan services in the future, please don't hesitate to contact Business Guru.

We're always here to support your business financing needs. Feel free to reach out to us anytime for any collateral loan requirements.

Thank you and have a great day! 🌟😊`,
}
