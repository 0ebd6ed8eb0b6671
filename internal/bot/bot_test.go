package bot

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"listbot/internal/utils"
	"listbot/liststore"
	"listbot/store/file"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	storage, err := file.New(file.Config{Path: filepath.Join(t.TempDir(), "lists.yaml")})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	s, err := liststore.New(liststore.DefaultConfig(), storage)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return NewDispatcher(s)
}

// ============================================================================
// ParseCommand
// ============================================================================

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCmd  string
		wantArgs []string
	}{
		{"simple command", "lists", "lists", nil},
		{"command with args", "add groceries milk", "add", []string{"groceries", "milk"}},
		{"uppercase command", "CREATE shopping", "create", []string{"shopping"}},
		{"leading whitespace", "  show groceries", "show", []string{"groceries"}},
		{"empty input", "", "", nil},
		{"whitespace only", "   ", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseCommand(tt.input)
			if cmd != tt.wantCmd {
				t.Errorf("command = %q, want %q", cmd, tt.wantCmd)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %q, want %q", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

// ============================================================================
// Dispatch
// ============================================================================

func TestDispatchCreateAndShow(t *testing.T) {
	d := newTestDispatcher(t)

	response, handled := d.Dispatch("create groceries")
	if !handled {
		t.Fatal("expected create to be handled")
	}
	if response != "Created list 'groceries'" {
		t.Errorf("unexpected response: %q", response)
	}

	response, _ = d.Dispatch("add groceries milk")
	if response != "Added 'milk' to 'groceries'" {
		t.Errorf("unexpected response: %q", response)
	}

	response, _ = d.Dispatch("show groceries")
	if !strings.Contains(response, "1. milk") {
		t.Errorf("expected numbered item in response, got %q", response)
	}
}

func TestDispatchMultiWordListName(t *testing.T) {
	d := newTestDispatcher(t)

	response, _ := d.Dispatch("create weekend plans")
	if response != "Created list 'weekend plans'" {
		t.Errorf("unexpected response: %q", response)
	}

	response, _ = d.Dispatch("show weekend plans")
	if response != "List 'weekend plans' is empty" {
		t.Errorf("unexpected response: %q", response)
	}
}

func TestDispatchErrorsRenderAsText(t *testing.T) {
	d := newTestDispatcher(t)

	response, handled := d.Dispatch("show missing")
	if !handled {
		t.Fatal("expected show to be handled")
	}
	if response != "List 'missing' not found" {
		t.Errorf("unexpected response: %q", response)
	}
}

func TestDispatchUsageMessages(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"create", UsageCreate},
		{"add", UsageAdd},
		{"add groceries", UsageAdd},
		{"remove", UsageRemove},
		{"remove groceries", UsageRemove},
		{"show", UsageShow},
		{"delete", UsageDelete},
		{"search", UsageSearch},
	}

	d := newTestDispatcher(t)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			response, handled := d.Dispatch(tt.input)
			if !handled {
				t.Fatal("expected command to be handled")
			}
			if response != tt.want {
				t.Errorf("response = %q, want %q", response, tt.want)
			}
		})
	}
}

func TestDispatchUnknownCommandIsSilent(t *testing.T) {
	d := newTestDispatcher(t)

	for _, input := range []string{"hello there", "what's up", "createlist x"} {
		if response, handled := d.Dispatch(input); handled {
			t.Errorf("expected %q to be unhandled, got response %q", input, response)
		}
	}
}

func TestDispatchStats(t *testing.T) {
	d := newTestDispatcher(t)
	d.Dispatch("create groceries")
	d.Dispatch("add groceries milk")

	response, handled := d.Dispatch("stats")
	if !handled {
		t.Fatal("expected stats to be handled")
	}
	if !strings.Contains(response, "Total lists: 1") {
		t.Errorf("expected list count in stats, got %q", response)
	}
	if !strings.Contains(response, "Total items: 1") {
		t.Errorf("expected item count in stats, got %q", response)
	}
}

func TestHelpTextIncludesLimits(t *testing.T) {
	d := newTestDispatcher(t)

	help := d.HelpText()
	for _, want := range []string{
		"create <list_name>",
		"search <term>",
		"Max lists: 50",
		"Max items per list: 100",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

// ============================================================================
// QuickAdd and mention parsing
// ============================================================================

func TestQuickAdd(t *testing.T) {
	d := newTestDispatcher(t)
	d.Dispatch("create groceries")

	response := d.QuickAdd("groceries", "milk, bread, eggs")
	if !strings.Contains(response, "Added 3 items to 'groceries':") {
		t.Errorf("unexpected response: %q", response)
	}
}

func TestParseMention(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantList  string
		wantItems string
		wantOK    bool
	}{
		{"valid", "@listbot groceries milk, bread", "groceries", "milk, bread", true},
		{"single item", "@listbot groceries milk", "groceries", "milk", true},
		{"no items", "@listbot groceries", "", "", false},
		{"mention only", "@listbot", "", "", false},
		{"wrong bot", "@otherbot groceries milk", "", "", false},
		{"not a mention", "groceries milk", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, items, ok := parseMention(tt.input, "listbot")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if list != tt.wantList {
				t.Errorf("list = %q, want %q", list, tt.wantList)
			}
			if items != tt.wantItems {
				t.Errorf("items = %q, want %q", items, tt.wantItems)
			}
		})
	}
}

// ============================================================================
// Message handling
// ============================================================================

func TestHandleMessageWithoutSender(t *testing.T) {
	// Channel posts have no From field; they must be logged, not panic
	// into the generic error reply.
	var buf bytes.Buffer
	b := &Bot{
		dispatcher: newTestDispatcher(t),
		logger:     utils.NewLogger(&buf),
		done:       make(chan struct{}),
	}

	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		Text: " ",
	}
	b.handleMessage(msg)

	out := buf.String()
	if !strings.Contains(out, "no sender") {
		t.Errorf("expected sender-less log line, got %q", out)
	}
	if strings.Contains(out, "Panic") {
		t.Errorf("handler panicked: %q", out)
	}
}
