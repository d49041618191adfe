package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
	"github.com/Sadra-Hemmati/voicedrive/internal/config"
)

// displayData holds the latest cycle for rendering.
type displayData struct {
	mu        sync.RWMutex
	cycle     command.Cycle
	haveCycle bool
}

// RunDisplay drives the SSD1306 status head: it subscribes to the cycle
// topic and redraws the current command at a fixed interval.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicCycle, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var cy command.Cycle
		if err := json.Unmarshal(msg.Payload(), &cy); err != nil {
			log.Printf("display: cycle unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.cycle = cy
		data.haveCycle = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicCycle)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		cy := data.cycle
		have := data.haveCycle
		data.mu.RUnlock()

		if err := updateCycleDisplay(dev, cy, have); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func updateCycleDisplay(dev *ssd1306.Dev, cy command.Cycle, haveData bool) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("voicedrive"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte("CMD: " + strings.ToUpper(cy.Command)))

		drawer.Dot = fixed.P(0, 26)
		if cy.Error != "" {
			drawer.DrawBytes([]byte("ERR (held)"))
		} else if cy.Label != "" {
			drawer.DrawBytes([]byte(fmt.Sprintf("%s %.2f", cy.Label, cy.Confidence)))
		} else {
			drawer.DrawBytes([]byte("no signal"))
		}

		drawer.Dot = fixed.P(0, 39)
		if cy.Changed {
			drawer.DrawBytes([]byte("new command"))
		} else {
			drawer.DrawBytes([]byte("holding"))
		}

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("cap %dms", cy.CaptureMS)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("voicedrive"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Press button"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("to talk"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
