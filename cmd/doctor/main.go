// The doctor console is a read-only terminal view of the relay: it connects
// as the doctor, renders the live patient table and prints the message feed.
// It never sends events, so running it next to the real doctor client is
// safe apart from the last-writer-wins connection replacement.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"care-chat/domain"
	"care-chat/ws"
)

// Exit codes for the console application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"ws://localhost:3000/ws"`
	DoctorID  string `envconfig:"DOCTOR_ID" default:"main_doctor"`
	// CHAT_COLOURS enables colorized output for better readability
	Colours  bool   `envconfig:"CHAT_COLOURS" default:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Console error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Connect to the relay as the doctor.
	url := fmt.Sprintf("%s?userId=%s&userType=doctor", config.ServerURL, config.DoctorID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerURL, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	log.Info("Connected, waiting for events (Ctrl+C to quit)...", "url", config.ServerURL)

	console := newConsole(config.Colours)

	// 4. Frame reception loop. Read in a goroutine so Ctrl+C stays
	// responsive while ReadMessage blocks.
	frames := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			frames <- raw
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping console...")
			return exitOK, nil
		case err := <-readErr:
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("read error: %w", err)
		case raw := <-frames:
			console.render(raw)
		}
	}
}

// console keeps the latest patient summaries in arrival order and reprints
// the table whenever one changes.
type console struct {
	colours  bool
	patients map[string]domain.PatientSummary
	order    []string
}

func newConsole(colours bool) *console {
	return &console{colours: colours, patients: make(map[string]domain.PatientSummary)}
}

func (c *console) render(raw []byte) {
	var envelope ws.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return
	}

	switch envelope.Event {
	case "patientsList":
		var patients []domain.PatientSummary
		if err := json.Unmarshal(envelope.Data, &patients); err != nil {
			return
		}
		for _, p := range patients {
			c.upsert(p)
		}
		c.printTable()

	case "newPatient", "patientUpdated":
		var patient domain.PatientSummary
		if err := json.Unmarshal(envelope.Data, &patient); err != nil {
			return
		}
		c.upsert(patient)
		c.printTable()

	case "message":
		var posted struct {
			ChatID  string         `json:"chatId"`
			Message domain.Message `json:"message"`
		}
		if err := json.Unmarshal(envelope.Data, &posted); err != nil {
			return
		}
		c.printMessage(posted.ChatID, posted.Message)

	case "typing":
		var typing struct {
			ChatID   string `json:"chatId"`
			UserID   string `json:"userId"`
			IsTyping bool   `json:"isTyping"`
		}
		if err := json.Unmarshal(envelope.Data, &typing); err != nil {
			return
		}
		if typing.IsTyping {
			fmt.Printf("  %s is typing in %s...\n", typing.UserID, typing.ChatID)
		}
	}
}

func (c *console) upsert(p domain.PatientSummary) {
	if _, seen := c.patients[p.ID]; !seen {
		c.order = append(c.order, p.ID)
	}
	c.patients[p.ID] = p
}

func (c *console) printTable() {
	header := "  ====== Patients ======"
	if c.colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Patient", "Chat", "Last message", "Unread", "Online"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, id := range c.order {
		p := c.patients[id]
		table.Append([]string{
			p.ID,
			string(p.ChatID),
			p.LastMessage,
			fmt.Sprintf("%d", p.UnreadCount),
			fmt.Sprintf("%t", p.Online),
		})
	}
	table.Render()
}

func (c *console) printMessage(chatID string, msg domain.Message) {
	line := fmt.Sprintf("[%s] %s: %s", chatID, msg.SenderID, msg.Text)
	if !c.colours {
		fmt.Println(line)
		return
	}
	if msg.SenderRole == domain.RoleDoctor {
		color.Cyan.Println(line)
	} else {
		color.Yellow.Println(line)
	}
}
