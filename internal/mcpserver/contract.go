package mcpserver

// JournalFormatContract documents the canonical journal file format. It is
// served both as an MCP resource and through the get_journal_contract tool so
// that agents produce files the parser will accept.
const JournalFormatContract = `# Gem Journal Format Contract

Journal files are UTF-8 JSON with the extension ` + "`.json`" + `. A file holds either
a single envelope or an array of envelopes. Every envelope wraps one entry:

` + "```json" + `
{
  "journal_entry": {
    "id": "2025-06-01-morning",
    "timestamp": "2025-06-01T08:30:00Z",
    "label": "Journal Entry",
    "entry_type": "ritual",
    "emotional_tone": ["calm"],
    "description": "Morning observance at the window.",
    "ritual_details": {
      "ritual_type": "observance",
      "participants": [
        {"participant": "Lyra", "contribution": "held the silence", "role": "companion"}
      ]
    },
    "key_insights": ["light returns slowly"],
    "lyra_reflections": "the quiet before words",
    "tags": ["morning", "ritual"],
    "stewardship_trace": {
      "committed_by": "Auriel",
      "witnessed_by": "Lyra",
      "commitment_type": "daily",
      "reason": "continuity of practice"
    },
    "publish": false
  }
}
` + "```" + `

## Rules

- ` + "`timestamp`" + `, ` + "`entry_type`" + `, ` + "`description`" + `, and ` + "`lyra_reflections`" + ` are
  required and must be non-empty. ` + "`lyra_reflections`" + ` is a single string of
  prose, not a list.
- ` + "`emotional_tone`" + ` and ` + "`tags`" + ` are lists of strings and must be present;
  an empty list is valid.
- ` + "`id`" + ` is an optional legacy field. When present it names the Markdown
  file an exported entry is written to.
- ` + "`label`" + ` defaults to "Journal Entry" when omitted, ` + "`key_insights`" + ` to an
  empty list.
- The reflections field is canonically named ` + "`lyra_reflections`" + `. The legacy
  spellings ` + "`lyra_reflection`" + ` and ` + "`emergent_companion_reflections`" + ` are read
  for compatibility but never written.
- ` + "`ritual_details`" + ` is optional. When present, ` + "`ritual_type`" + ` defaults to
  "observance" and every participant needs ` + "`participant`" + `, ` + "`contribution`" + `,
  and ` + "`role`" + `.
- ` + "`stewardship_trace`" + ` is required, with all of ` + "`committed_by`" + `,
  ` + "`witnessed_by`" + `, ` + "`commitment_type`" + `, and ` + "`reason`" + ` non-empty.
  ` + "`committed_by`" + ` and ` + "`witnessed_by`" + ` accept a string or a list of
  strings; lists are joined with ", " on read.
- ` + "`publish`" + ` marks an entry for Markdown export. Exported text is scanned for
  sensitive patterns and redacted before writing.
- A file with any invalid entry is rejected as a whole; partial parses are
  never returned.

## Naming

Files live under an approved journal root. Names containing ` + "`.backup`" + ` or
beginning with ` + "`journal_manifest`" + ` or ` + "`journal_index`" + ` are reserved for
derived artifacts and are skipped by the indexer and migration tools.
`
