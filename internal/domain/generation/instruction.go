package generation

import "fmt"

// Category is the requested summary length class.
type Category string

// Known length categories. Anything else falls through to the elaborate
// default instruction, which is a reachable fifth variant, not an error.
const (
	CategoryUltraConcise Category = "ultra_concise"
	CategoryConcise      Category = "concise"
	CategoryMedium       Category = "medium"
	CategoryLong         Category = "long"
)

// Instruction maps the two orthogonal UI parameters onto one of ten fixed
// Slovenian task instructions. Pure and total. numBulletPoints is embedded
// into the bullet variants; it is a configuration constant today but already
// a parameter here so it can become user-settable without an API break.
func Instruction(isBullet bool, category Category, numBulletPoints int) string {
	if isBullet {
		switch category {
		case CategoryUltraConcise:
			return fmt.Sprintf("Naredi %d kraih alinej iz besedila. Naj bodo izjemno kratke in jedrnate.", numBulletPoints)
		case CategoryConcise:
			return fmt.Sprintf("Pretvori besedilo v %d alinej. Naj bodo kratke in jasne.", numBulletPoints)
		case CategoryMedium:
			return fmt.Sprintf("Naredi %d alinej iz besedila z zmerno količino podrobnosti.", numBulletPoints)
		case CategoryLong:
			return fmt.Sprintf("Razčleni besedilo v %d alinej z več podrobnostmi in razširjenimi pojasnili.", numBulletPoints)
		default:
			return fmt.Sprintf("Razvij %d alinej iz besedila, pri čemer vključuješ poglobljene informacije in podrobne razlage.", numBulletPoints)
		}
	}
	switch category {
	case CategoryUltraConcise:
		return "Zgoščeno povzemite glavno idejo v eni sami, osrednji misli. Povzetek naj bo čim krajši."
	case CategoryConcise:
		return "Strnite bistvo v kratke in jedrnate povedi, izpostavljajoč najpomembnejše informacije."
	case CategoryMedium:
		return "Oblikujte povzetek, ki vključuje pomembne podrobnosti in argumente."
	case CategoryLong:
		return "Pripravite obširen povzetek, ki pokriva vse ključne vidike in informacije."
	default:
		return "Ustvarite temeljit povzetek, ki podrobno povzema vse glavne točke, podatke in zaključke."
	}
}
