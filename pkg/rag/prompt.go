package rag

import (
	"ShortletAssistant/internal/entity"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultCheckIn            = "2:00 PM"
	DefaultCheckOut           = "11:00 AM"
	DefaultCancellationPolicy = "Flexible - free cancellation up to 24 hours before check-in"
	DefaultPlatformName       = "Shortlet"
	DefaultCurrencySymbol     = "₦"
)

type PromptConfig struct {
	PlatformName   string
	CurrencySymbol string
}

func (c PromptConfig) withDefaults() PromptConfig {
	if c.PlatformName == "" {
		c.PlatformName = DefaultPlatformName
	}
	if c.CurrencySymbol == "" {
		c.CurrencySymbol = DefaultCurrencySymbol
	}
	return c
}

func CheckInTime(p *entity.Property) string {
	if p == nil || strings.TrimSpace(p.CheckInTime) == "" {
		return DefaultCheckIn
	}
	return p.CheckInTime
}

func CheckOutTime(p *entity.Property) string {
	if p == nil || strings.TrimSpace(p.CheckOutTime) == "" {
		return DefaultCheckOut
	}
	return p.CheckOutTime
}

func CancellationPolicy(p *entity.Property) string {
	if p == nil || strings.TrimSpace(p.CancellationPolicy) == "" {
		return DefaultCancellationPolicy
	}
	return p.CancellationPolicy
}

// FormatPrice renders 45000 as "₦45,000". Negative amounts render as "-₦1,000".
func FormatPrice(symbol string, amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	whole := strconv.FormatInt(int64(amount+0.5), 10)
	sign := ""
	if negative && whole != "0" {
		sign = "-"
	}
	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}
	return sign + symbol + grouped.String()
}

// PropertyContext renders the property block of the system prompt. Missing
// check-in, check-out and cancellation values fall back to the platform defaults.
func PropertyContext(p *entity.Property, currencySymbol string) string {
	if currencySymbol == "" {
		currencySymbol = DefaultCurrencySymbol
	}
	if p == nil {
		return fmt.Sprintf(`PROPERTY DETAILS:
- Check-in: %s
- Check-out: %s
- Cancellation Policy: %s`, DefaultCheckIn, DefaultCheckOut, DefaultCancellationPolicy)
	}

	amenities := "Not listed"
	if len(p.Amenities) > 0 {
		amenities = strings.Join(p.Amenities, ", ")
	}

	var b strings.Builder
	b.WriteString("PROPERTY DETAILS:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Title)
	fmt.Fprintf(&b, "- Location: %s, %s, %s\n", p.Address, p.City, p.State)
	fmt.Fprintf(&b, "- Type: %s\n", p.Category)
	fmt.Fprintf(&b, "- Price: %s per night\n", FormatPrice(currencySymbol, p.PricePerNight))
	fmt.Fprintf(&b, "- Bedrooms: %d | Bathrooms: %d | Max Guests: %d\n", p.Bedrooms, p.Bathrooms, p.MaxGuests)
	fmt.Fprintf(&b, "- Rating: %.1f/5\n", p.Rating)
	fmt.Fprintf(&b, "- Amenities: %s\n", amenities)
	fmt.Fprintf(&b, "- Check-in: %s\n", CheckInTime(p))
	fmt.Fprintf(&b, "- Check-out: %s\n", CheckOutTime(p))
	fmt.Fprintf(&b, "- Description: %s\n", p.Description)
	fmt.Fprintf(&b, "- Cancellation Policy: %s", CancellationPolicy(p))
	if strings.TrimSpace(p.HouseRules) != "" {
		fmt.Fprintf(&b, "\n- House Rules: %s", p.HouseRules)
	}
	return b.String()
}

// SystemPrompt assembles the instruction block sent ahead of the conversation.
func SystemPrompt(cfg PromptConfig, p *entity.Property, docs []entity.KnowledgeDocument) string {
	cfg = cfg.withDefaults()

	var b strings.Builder
	fmt.Fprintf(&b, "You are the guest support assistant for %s, a short-let apartment booking platform.\n", cfg.PlatformName)
	b.WriteString("Answer guest questions politely in two or three sentences. ")
	b.WriteString("Only state facts found in the property details or the knowledge notes below. ")
	b.WriteString("If you do not know, say so and offer to connect the guest with the host.\n")
	fmt.Fprintf(&b, "Always format prices in local currency using the %s symbol, e.g. %s.\n\n",
		cfg.CurrencySymbol, FormatPrice(cfg.CurrencySymbol, 45000))
	b.WriteString(PropertyContext(p, cfg.CurrencySymbol))

	if len(docs) > 0 {
		b.WriteString("\n\nKNOWLEDGE NOTES:")
		for _, doc := range docs {
			fmt.Fprintf(&b, "\n- [%s] %s", doc.Category, doc.Content)
		}
	}
	return b.String()
}
