package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
	"github.com/Sadra-Hemmati/voicedrive/internal/config"
)

// RunConsole subscribes to the cycle topic and prints one line per cycle.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicCycle, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var cy command.Cycle
		if err := json.Unmarshal(msg.Payload(), &cy); err != nil {
			log.Printf("console: cycle unmarshal error: %v", err)
			return
		}

		if cy.Error != "" {
			fmt.Printf(
				"[CYCLE] cmd=%-5s HELD  error=%s\n",
				cy.Command, cy.Error,
			)
			return
		}

		fmt.Printf(
			"[CYCLE] cmd=%-5s changed=%-5v label=%-8s conf=%.2f capture=%dms\n",
			cy.Command, cy.Changed, cy.Label, cy.Confidence, cy.CaptureMS,
		)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicCycle)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
