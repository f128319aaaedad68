package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BookScriptName is the shell file exporting the book's metadata.
const BookScriptName = "book.sh"

var shellQuote = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

// BookScript returns a bash script exporting BOOK_TITLE, BOOK_AUTHOR and
// BOOK_COVER. Values are safe inside double quotes.
func BookScript(title, author string) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&b, "export BOOK_TITLE=\"%s\"\n", shellQuote.Replace(title))
	fmt.Fprintf(&b, "export BOOK_AUTHOR=\"%s\"\n", shellQuote.Replace(author))
	b.WriteString("export BOOK_COVER=\"cover\"\n")
	return b.String()
}

func writeBookScript(dir, title, author string) error {
	path := filepath.Join(dir, BookScriptName)
	if err := os.WriteFile(path, []byte(BookScript(title, author)), 0755); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
