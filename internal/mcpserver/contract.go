package mcpserver

// MarkupContract describes the outline markup a heading must follow to be
// published as a blog entry. It documents the default grammar; the tag,
// keyword and property names are configurable in the markup section.
const MarkupContract = `# orgblog Markup Contract

A blog is one or more outline-markup files. Every heading that satisfies the
rules below becomes one entry; everything else is ignored.

## Entry structure

` + "```" + `org
* DONE Title of the entry                                   :blog:emacs:go:
:PROPERTIES:
:ID:       2024-03-02-title-of-the-entry
:CREATED:  [2024-03-01 Fri 10:00]
:END:
:LOGBOOK:
- State "DONE"       from "NEXT"       [2024-03-02 Sat 18:30]
:END:

Body paragraphs, lists, tables and blocks.
` + "```" + `

## Rules

1. **State.** The heading carries the ` + "`DONE`" + ` keyword.
2. **Tag.** The heading carries the ` + "`:blog:`" + ` tag. Tags compare case-insensitively.
3. **ID.** The ` + "`:PROPERTIES:`" + ` drawer holds a unique ` + "`:ID:`" + `. An id may never
   move to another file or be reused for a different heading.
4. **Created.** ` + "`:CREATED:`" + ` is an inactive timestamp ` + "`[YYYY-MM-DD Day HH:MM]`" + `.
5. **Published.** The ` + "`:LOGBOOK:`" + ` drawer holds at least one ` + "`- State \"DONE\"`" + `
   line. The oldest one is the first publication, the newest one the latest update.
6. **Titles** must not be empty.
7. **Sub-headings** of an entry become content headings. A sibling or higher heading ends it.

## Categories

| Tag | Category |
|---|---|
| (none) | TEMPORAL: a dated article in the feed |
| ` + "`:lb_persistent:`" + ` | PERSISTENT: a page outside the feed |
| ` + "`:lb_tags:`" + ` | TAGS: the description page of a tag |
| ` + "`:lb_templates:`" + ` | TEMPLATES: named ` + "`#+BEGIN_EXPORT html`" + ` snippets |

Add ` + "`:hidden:`" + ` to keep an entry out of the timeline. Add ` + "`:noexport:`" + ` to drop a
heading and its whole subtree.

## Content

- Paragraphs: consecutive text lines, separated by blank lines.
- Blocks: ` + "`#+BEGIN_SRC lang`" + ` ... ` + "`#+END_SRC`" + ` (also EXAMPLE, QUOTE, VERSE, CENTER,
  EXPORT, HTML). An optional ` + "`#+NAME:`" + ` line names the next block.
- Tables: lines starting with ` + "`|`" + `, optionally followed by ` + "`#+TBLFM:`" + `.
- Lists: ` + "`-`" + `, ` + "`+`" + ` or ` + "`1.`" + ` items; continuation lines are indented to the item text.
- Fixed width: lines starting with ` + "`: `" + `.
- Horizontal rule: five or more dashes.
- Images: a line holding only ` + "`[[tsfile:name.png][description]]`" + `, optionally preceded by
  ` + "`#+CAPTION:`" + ` and ` + "`#+ATTR_HTML: :alt text :width 300`" + `.
- Link abbreviations: ` + "`#+LINK: name https://example.org/%s`" + `.

## Errors

Unterminated blocks or drawers, headings inside a drawer, a stray ` + "`:END:`" + `, malformed
table rows and an unparsable CREATED timestamp stop the build with file and line.
Lists, tables and fixed-width blocks end only on a blank line: a heading right
after one is an error too. A ` + "`#+CAPTION:`" + ` that no image follows is dropped with a
warning.
Entries missing an ID, CREATED or DONE line are skipped with a warning.
`
