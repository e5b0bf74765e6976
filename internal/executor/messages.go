package executor

import (
	"fmt"
	"strings"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/models"
)

const (
	confirmDeleteAll = `This will delete all of your notes. Reply "yes, delete all notes" to confirm.`
	nothingToRestore = "No deleted notes to restore."
)

var failVerbs = map[action.Kind]string{
	action.KindCreateNote:      "create note",
	action.KindUpdateNote:      "update note",
	action.KindDeleteNote:      "delete note",
	action.KindCompleteNote:    "mark note as completed",
	action.KindUncompleteNote:  "mark note as uncompleted",
	action.KindSearchNotes:     "search notes",
	action.KindCountNotes:      "count notes",
	action.KindAskNote:         "read note",
	action.KindDeleteAllNotes:  "delete all notes",
	action.KindRestoreLastNote: "restore note",
	action.KindRestoreNote:     "restore note",
	action.KindListCompleted:   "list completed notes",
}

var doneVerbs = map[action.Kind]string{
	action.KindUpdateNote:      "updated",
	action.KindDeleteNote:      "deleted",
	action.KindCompleteNote:    "marked as completed",
	action.KindUncompleteNote:  "marked as uncompleted",
	action.KindRestoreLastNote: "restored",
	action.KindRestoreNote:     "restored",
}

func failed(kind action.Kind, err error) string {
	return fmt.Sprintf("Failed to %s: %s", failVerbs[kind], err.Error())
}

func created(title string) string {
	return fmt.Sprintf("Note created with title %q.", title)
}

func mutated(kind action.Kind, title string) string {
	return fmt.Sprintf("Note %q %s.", title, doneVerbs[kind])
}

func unknownAction(kind action.Kind) string {
	return fmt.Sprintf("Unknown action %q.", string(kind))
}

func noNoteWithID(id string) string {
	return fmt.Sprintf("No note found with id %q.", id)
}

func noNoteTitled(title string) string {
	return fmt.Sprintf("No note found with title %q.", title)
}

func noMatch(kind action.Kind, match string) string {
	if kind.SearchesDeleted() {
		return fmt.Sprintf("No deleted notes found matching %q.", match)
	}
	return fmt.Sprintf("No matching notes found for %q.", match)
}

func nothingFound(query string) string {
	return fmt.Sprintf("No notes found containing %q.", query)
}

func foundNotes(notes []models.Note) string {
	var sb strings.Builder
	sb.WriteString("Found notes:")
	for _, n := range notes {
		fmt.Fprintf(&sb, "\n- %s: %s", n.Title, n.Content)
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func countTitled(n int, title string) string {
	return fmt.Sprintf("You have %s titled %q.", plural(n, "note", "notes"), title)
}

func countStatus(n int, status string) string {
	if status == "" {
		return fmt.Sprintf("You have %s.", plural(n, "note", "notes"))
	}
	return fmt.Sprintf("You have %s.", plural(n, status+" note", status+" notes"))
}

func deletedAll(n int) string {
	return fmt.Sprintf("All notes deleted (%d).", n)
}

func completedList(notes []models.Note) string {
	if len(notes) == 0 {
		return "No completed notes found."
	}
	var sb strings.Builder
	sb.WriteString("Completed notes:")
	for i, n := range notes {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, n.Title)
	}
	return sb.String()
}

func disambiguation(match string, opts []action.Option) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Multiple notes match %q. Which one did you mean?", match)
	for _, o := range opts {
		fmt.Fprintf(&sb, "\n%d. %s", o.Number, o.Title)
	}
	sb.WriteString("\nReply with the number of the note.")
	return sb.String()
}

func invalidChoice(n int) string {
	return fmt.Sprintf("Invalid choice. Please reply with a number between 1 and %d.", n)
}
