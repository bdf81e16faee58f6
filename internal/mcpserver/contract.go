package mcpserver

// DeckFormatContract describes the canonical Markdown deck format that
// LLM consumers should follow when creating or updating decks.
const DeckFormatContract = `# Deckdown Deck Format Contract

Every slide deck stored in Deckdown MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable deck title    # OPTIONAL frontmatter, YAML
theme: dark                         # OPTIONAL
---

<!-- deck
theme: dark                         # document-level directives
image_mode: ascii
-->

# First slide heading

Body text in standard Markdown.

???
Speaker notes for this slide (hidden from the audience).

---

<!-- slide
incremental_lists: true             # slide-level directive override
-->

# Second slide

::: columns
::: column 30
Narrow column.
:::
::: column
Wide column (takes the remaining width).
:::
:::
` + "```" + `

## Rules

1. **Slides are separated by ` + "`" + `---` + "`" + ` on its own line.** A ` + "`" + `---` + "`" + ` inside a
   fenced code block does NOT split slides. YAML frontmatter fences at the
   very top of the file are not slide separators either.
2. **Directives** are ` + "`" + `key: value` + "`" + ` lines inside HTML comments.
   ` + "`" + `<!-- deck ... -->` + "`" + ` applies to the whole document (first block wins);
   ` + "`" + `<!-- slide ... -->` + "`" + ` applies to its slide only. Slide beats document
   beats global defaults. Recognized keys: ` + "`" + `theme` + "`" + `, ` + "`" + `image_mode` + "`" + `
   (ascii, blocks, none, auto), ` + "`" + `incremental_lists` + "`" + `, ` + "`" + `show_clock` + "`" + `,
   ` + "`" + `show_elapsed` + "`" + `, ` + "`" + `countdown_minutes` + "`" + `. The shorthands
   ` + "`" + `<!-- incremental -->` + "`" + ` and ` + "`" + `<!-- no-incremental -->` + "`" + ` toggle list
   reveal for a single slide.
3. **Layout blocks** open with ` + "`" + `::: name` + "`" + ` and close with ` + "`" + `:::` + "`" + `.
   Available: ` + "`" + `columns` + "`" + ` / ` + "`" + `column [percent]` + "`" + `, ` + "`" + `center` + "`" + `,
   ` + "`" + `right` + "`" + `, ` + "`" + `box "Title"` + "`" + `. Columns may only contain ` + "`" + `column` + "`" + `
   blocks; every opened block must be closed on the same slide.
4. **Speaker notes** start at a line containing only ` + "`" + `???` + "`" + ` and run to the
   end of the slide. At most one notes section per slide.
5. **Images** use standard Markdown syntax ` + "`" + `![alt](path.png)` + "`" + `. Paths are
   relative to the library root; uploaded assets live under ` + "`" + `/assets/` + "`" + `.
6. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
7. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
title: Quarterly Review
---

# Q3 Results

- Revenue up 12%
- Churn flat

???
Pause here for questions.

---

# Roadmap

::: box "Shipping next"
Dark mode, offline sync.
:::
` + "```" + `
`
