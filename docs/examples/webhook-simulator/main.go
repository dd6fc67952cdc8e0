// Business Guru webhook simulator
//
// Posts sample GreenAPI notification payloads to a running CRM instance so
// the webhook pipeline can be exercised without a real WhatsApp account.
//
// Usage:
//   go run main.go                                    # all scenarios
//   go run main.go -scenario interested               # one scenario
//   go run main.go -url http://localhost:8080/api/enquiries/whatsapp/webhook
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type scenario struct {
	name string
	body string
}

func incoming(chatID, senderName, text string) string {
	return fmt.Sprintf(`{
  "typeWebhook": "incomingMessageReceived",
  "instanceData": {"idInstance": 1101000001, "wid": "919999999999@c.us", "typeInstance": "whatsapp"},
  "timestamp": %d,
  "idMessage": "SIM%d",
  "senderData": {"chatId": %q, "sender": %q, "senderName": %q},
  "messageData": {"typeMessage": "textMessage", "textMessage": {"text": %q}}
}`, time.Now().Unix(), time.Now().UnixNano(), chatID, chatID, senderName, text)
}

func outgoing(chatID, text string) string {
	return fmt.Sprintf(`{
  "typeWebhook": "outgoingMessageReceived",
  "instanceData": {"idInstance": 1101000001, "wid": "919999999999@c.us", "typeInstance": "whatsapp"},
  "timestamp": %d,
  "idMessage": "SIM%d",
  "senderData": {"chatId": %q, "sender": "919999999999@c.us", "senderContactName": "Business Guru"},
  "messageData": {"typeMessage": "textMessage", "textMessageData": {"textMessage": %q}}
}`, time.Now().Unix(), time.Now().UnixNano(), chatID, text)
}

func scenarios() []scenario {
	return []scenario{
		{"interested", incoming("919876543210@c.us", "Ramesh Kumar", "Interested")},
		{"reply-option", incoming("919812345678@c.us", "Sita Devi", "2")},
		{"freeform", incoming("919811111111@c.us", "Arjun", "Hi, I need a business loan")},
		{"outgoing", outgoing("919876543210@c.us", "Thank you for contacting us")},
		{"state-change", `{"typeWebhook": "stateInstanceChanged", "instanceData": {"idInstance": 1101000001}, "stateInstance": "authorized"}`},
		{"malformed", `{"typeWebhook": "incomingMessageReceived", "senderData":`},
	}
}

func main() {
	var (
		url  = flag.String("url", envOr("CRM_WEBHOOK_URL", "http://localhost:8080/api/enquiries/whatsapp/webhook"), "Webhook endpoint URL")
		only = flag.String("scenario", "", "Run a single scenario by name")
	)
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	ran := 0
	for _, sc := range scenarios() {
		if *only != "" && sc.name != *only {
			continue
		}
		ran++
		resp, err := client.Post(*url, "application/json", bytes.NewReader([]byte(sc.body)))
		if err != nil {
			log.Fatalf("%s: %v", sc.name, err)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		fmt.Printf("%-12s -> %d %s\n", sc.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if ran == 0 {
		log.Fatalf("unknown scenario %q", *only)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
