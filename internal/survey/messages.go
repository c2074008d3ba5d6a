package survey

import (
	"fmt"
	"strings"

	"github.com/luislealdev/nine-minutes-bot-api/internal/catalog"
)

// Outbound texts. The wording is a product concern; what the engine
// guarantees is that each reply matches the state it just moved to.
const (
	msgAdvance       = "Perfecto, seguimos con la siguiente pregunta."
	msgRejected      = "Gracias por tu aplicación. ¡Hasta luego!"
	msgYesNo         = "Por favor responde con 'sí' o 'no'."
	msgCooldown      = "Ya completaste una solicitud recientemente. Podrás volver a aplicar 90 días después de tu última solicitud. ¡Gracias por tu interés!"
	msgGenericAccept = "¡Felicidades! Has completado tu solicitud. En breve nos pondremos en contacto contigo."
)

func firstQuestion(c *catalog.Catalog) string {
	return c.Questions.Age
}

func locationQuestion(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(msgAdvance)
	b.WriteString("\n")
	b.WriteString(c.Questions.Location)
	b.WriteString("\n")
	writeList(&b, c.LocationNames())
	return b.String()
}

func locationRetry(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("No reconocimos esa ubicación. Estas son nuestras ubicaciones:\n")
	writeList(&b, c.LocationNames())
	b.WriteString("¿En cuál te gustaría trabajar?")
	return b.String()
}

func branchQuestion(loc *catalog.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tenemos varias sucursales en %s:\n", loc.Name)
	writeList(&b, loc.BranchNames())
	b.WriteString("¿En cuál te interesa trabajar?")
	return b.String()
}

func branchRetry(loc *catalog.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No reconocimos esa sucursal. Las sucursales en %s son:\n", loc.Name)
	writeList(&b, loc.BranchNames())
	b.WriteString("¿En cuál te interesa trabajar?")
	return b.String()
}

func branchConfirmed(c *catalog.Catalog, br *catalog.Branch) string {
	return fmt.Sprintf("¡Anotado! Te registramos para %s.\n%s", br.Name, c.Questions.Shift)
}

func shiftAdvance(c *catalog.Catalog) string {
	return msgAdvance + "\n" + c.Questions.Weekends
}

func accepted(br *catalog.Branch) string {
	if br == nil {
		return msgGenericAccept
	}
	return fmt.Sprintf(
		"¡Felicidades! Has completado tu solicitud.\nPreséntate en %s:\n%s\nTel: %s\n¡Te esperamos!",
		br.Name, br.Address, br.Phone,
	)
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}
