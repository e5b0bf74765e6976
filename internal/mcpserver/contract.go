package mcpserver

import (
	"strconv"
	"strings"

	"github.com/starford/notechat/internal/models"
	"github.com/starford/notechat/internal/prompt"
)

// ActionContract describes the action descriptors accepted by run_action.
var ActionContract = `# Notechat Action Contract

Every call to ` + "`run_action`" + ` carries one JSON action descriptor, or a JSON
array of descriptors executed in order.

## Actions

` + "```" + `json
` + strings.Join(prompt.ActionFormats, "\n") + `
` + "```" + `

## Rules

1. **Targets.** Actions that change one note take either ` + "`id`" + ` or ` + "`match`" + `.
   ` + "`match`" + ` is compared against titles: exact (case and whitespace
   insensitive), then substring, then fuzzy.
2. **Ambiguity.** When several notes match, nothing is changed. The result
   lists numbered options followed by a ` + "`choose_note`" + ` session object.
   Add ` + "`\"choice\": N`" + ` to that object and pass it back to ` + "`run_action`" + `.
3. **Titles** are required on create, non-blank and at most ` + strconv.Itoa(models.MaxTitleLength) + ` characters.
4. **Deletes are soft.** Deleted notes can be restored with
   ` + "`restore_last_deleted_note`" + ` or ` + "`restore_note_from_notes_table`" + `.
5. **delete_all_notes** requires ` + "`confirm`" + ` to be an explicit yes.
`
