// Package bot implements the Telegram front end: keyword command parsing,
// mention-based quick add, and the long-polling update loop.
package bot

import (
	"fmt"
	"strings"

	"listbot/liststore"
)

// Usage messages returned for malformed commands
const (
	UsageCreate = "Usage: create <list_name>"
	UsageAdd    = "Usage: add <list_name> <item>"
	UsageRemove = "Usage: remove <list_name> <item>"
	UsageShow   = "Usage: show <list_name>"
	UsageDelete = "Usage: delete <list_name>"
	UsageSearch = "Usage: search <term>"
)

// ParseCommand splits a message into a lowercase command keyword and its
// arguments. Returns an empty command for blank input.
func ParseCommand(text string) (string, []string) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil
	}
	return strings.ToLower(parts[0]), parts[1:]
}

// Dispatcher routes parsed keyword commands to the list store. It is shared
// by the Telegram handler and the interactive shell.
type Dispatcher struct {
	store *liststore.Store
}

// NewDispatcher creates a dispatcher over the given store
func NewDispatcher(store *liststore.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// Dispatch executes a single keyword command line. The returned bool is
// false when the command is unrecognized, letting callers stay silent
// instead of replying to ordinary chat messages.
func (d *Dispatcher) Dispatch(text string) (string, bool) {
	command, args := ParseCommand(text)
	if command == "" {
		return "", false
	}

	switch command {
	case "help":
		return d.HelpText(), true

	case "create":
		if len(args) == 0 {
			return UsageCreate, true
		}
		return respond(d.store.Create(strings.Join(args, " "))), true

	case "lists":
		return d.store.ShowAll(), true

	case "add":
		if len(args) < 2 {
			return UsageAdd, true
		}
		return respond(d.store.AddItem(args[0], strings.Join(args[1:], " "))), true

	case "remove":
		if len(args) < 2 {
			return UsageRemove, true
		}
		return respond(d.store.RemoveItem(args[0], strings.Join(args[1:], " "))), true

	case "show":
		if len(args) == 0 {
			return UsageShow, true
		}
		return respond(d.store.ShowList(strings.Join(args, " "))), true

	case "delete":
		if len(args) == 0 {
			return UsageDelete, true
		}
		return respond(d.store.Delete(strings.Join(args, " "))), true

	case "search":
		if len(args) == 0 {
			return UsageSearch, true
		}
		return respond(d.store.Search(strings.Join(args, " "))), true

	case "stats":
		return d.store.Stats().Format(), true
	}

	return "", false
}

// QuickAdd handles the mention form: first word is the list name, the rest
// is a comma-separated batch of items.
func (d *Dispatcher) QuickAdd(listName, itemsText string) string {
	return respond(d.store.AddItems(listName, itemsText))
}

// respond collapses a store result into a single reply string. Store errors
// carry user-facing messages, so both branches read the same to the chat.
func respond(msg string, err error) string {
	if err != nil {
		return err.Error()
	}
	return msg
}

// HelpText returns the command reference, with the configured limits
func (d *Dispatcher) HelpText() string {
	cfg := d.store.Limits()
	return fmt.Sprintf(`List Bot Commands:

List Management:
- create <list_name> - Create a new list
- lists - Show all lists
- delete <list_name> - Delete a list

Item Management:
- add <list_name> <item> - Add item to list
- remove <list_name> <item> - Remove item from list
- show <list_name> - Show all items in list

Quick Add (Mention Bot):
- @bot <list_name> <item1>, <item2>, <item3> - Add multiple items at once

Search:
- search <term> - Search for items across all lists

Other:
- stats - Show usage statistics

Limits:
- Max lists: %d
- Max items per list: %d
- Max list name length: %d
- Max item length: %d`,
		cfg.MaxLists, cfg.MaxItemsPerList, cfg.MaxListNameLength, cfg.MaxItemLength)
}
