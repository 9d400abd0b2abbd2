// Package notify delivers new-Article notices to readers who subscribed to
// one of the Article's authors.
//
// Two backends exist: Log, which only records the notice, and SES, which
// sends it as a plain-text email through Amazon SES. Both compose the same
// message with Compose.
package notify

import (
	"fmt"
	"strings"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// Compose builds the subject and plain-text body of the notice sent to a
// subscriber of author about a.
func Compose(author string, a catalog.Article) (subject, body string) {
	subject = fmt.Sprintf("Novo artigo publicado de %s", author)

	abstract := strings.TrimSpace(a.Abstract)
	if abstract == "" {
		abstract = "Sem resumo"
	}

	var b strings.Builder
	b.WriteString("Olá!\n\n")
	fmt.Fprintf(&b, "Um novo artigo foi publicado com o nome do autor %s:\n\n", author)
	fmt.Fprintf(&b, "Título: %s\n", a.Title)
	fmt.Fprintf(&b, "Autores: %s\n", strings.Join(a.AuthorNames(), ", "))
	if a.Year > 0 {
		fmt.Fprintf(&b, "Ano: %d\n", a.Year)
	}
	fmt.Fprintf(&b, "Resumo: %s\n\n", abstract)
	b.WriteString("Acesse a biblioteca para ver o artigo completo.\n")
	return subject, b.String()
}
