package analysis

import (
	"fmt"
	"strings"

	"github.com/billalcoder/skinCare/internal/models"
)

// buildPrompt renders the personalised advisor prompt. The advisor is asked
// for a strict JSON object so the gateway can extract structured metadata for
// history filtering; the education level tunes the language register of the
// analysis text.
func buildPrompt(user *models.User, extractedText string) string {
	var sb strings.Builder

	sb.WriteString("You are a professional skincare advisor. Analyze the product ")
	sb.WriteString("described by the ingredient text below for this specific user. ")
	sb.WriteString("Skincare includes cosmetic products.\n\n")

	sb.WriteString("User profile:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", user.Name)
	fmt.Fprintf(&sb, "- Age: %d\n", user.Age)
	fmt.Fprintf(&sb, "- Gender: %s\n", user.Gender)
	fmt.Fprintf(&sb, "- Skin type: %s\n", user.SkinType)
	fmt.Fprintf(&sb, "- Skin concerns: %s\n", joinOrNone(user.Concerns))
	fmt.Fprintf(&sb, "- Allergies: %s\n", joinOrNone(user.Allergies))
	fmt.Fprintf(&sb, "- Education level: %s\n\n", valueOrDefault(user.Qualification, "not provided"))

	sb.WriteString("Product text (from the label):\n")
	sb.WriteString(extractedText)
	sb.WriteString("\n\n")

	sb.WriteString("Adjust the explanation to the user's education level: plain, ")
	sb.WriteString("short sentences for low or unknown education; moderate detail for ")
	sb.WriteString("school or college level; deeper technical reasoning only for highly ")
	sb.WriteString("educated users.\n\n")

	sb.WriteString("Cover, personalised to this user:\n")
	sb.WriteString("1. Whether the product is suitable, with caution, or not recommended.\n")
	sb.WriteString("2. Benefits for this skin type and these concerns.\n")
	sb.WriteString("3. Harmful or risky ingredients, including allergy matches and nano particles.\n")
	sb.WriteString("4. Safe or helpful ingredients.\n")
	sb.WriteString("5. Usage guidance: frequency, amount, AM/PM, patch test.\n")
	sb.WriteString("6. A final recommendation.\n\n")

	sb.WriteString("If the ingredients do not belong to a skincare or cosmetic product, ")
	sb.WriteString("say so and do not review it.\n\n")

	sb.WriteString("Respond with a single JSON object and nothing else, using exactly ")
	sb.WriteString("these keys:\n")
	sb.WriteString(`{"analysis": "<full advice text>", "ingredients": ["..."], `)
	sb.WriteString(`"productType": "<e.g. moisturiser>", "brand": "<brand or Unknown>", `)
	sb.WriteString(`"rating": <0-5 number>, "suitability": `)
	fmt.Fprintf(&sb, "\"<one of: %s>\"}", strings.Join(models.SuitabilityValues, ", "))

	return sb.String()
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
