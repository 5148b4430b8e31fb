package extract

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/report"
)

// categoriesPrompt names the taxonomy inside the instruction so the model
// never invents categories. domain.Categories is the single source of truth.
func categoriesPrompt() string {
	var b strings.Builder
	b.WriteString("Use ONLY the following categories:\n\n")
	for _, c := range domain.Categories {
		b.WriteString("  - " + c + "\n")
	}
	b.WriteString("\nCATEGORY ASSIGNMENT RULES:\n")
	b.WriteString("1. Category must be EXACTLY one of the names shown above (case-sensitive).\n")
	b.WriteString("2. If you are unsure, use \"" + domain.CategoryOther + "\".\n")
	return b.String()
}

func imagePrompt() string {
	base :=
		"You are a receipt parser for a personal expense tracker.\n\n" +
			"Task:\n" +
			"- Read the attached receipt image.\n" +
			"- Extract the merchant or transaction name, the final total paid,\n" +
			"  the transaction date, and the best-fitting spending category.\n" +
			"- Output a single JSON object with these fields:\n" +
			"  - \"transaction_name\": string or null\n" +
			"  - \"total_amount\": number or null (the grand total, not a line item)\n" +
			"  - \"transaction_date\": string \"YYYY-MM-DD\" or null\n" +
			"  - \"category\": string or null\n\n"

	rules :=
		"Rules:\n" +
			"- Use null for anything you cannot read from the receipt. Never guess a date.\n" +
			"- Return ONLY valid raw JSON, no code fences, no Markdown.\n"

	return base + categoriesPrompt() + "\n" + rules
}

func voicePrompt(today civil.Date) string {
	base :=
		"You are listening to a short voice memo describing one expense.\n\n" +
			"Task:\n" +
			"- Extract what was bought, how much it cost, when, and the\n" +
			"  best-fitting spending category.\n" +
			"- Output a single JSON object with these fields:\n" +
			"  - \"transaction_name\": string or null\n" +
			"  - \"total_amount\": number or null\n" +
			"  - \"transaction_date\": string \"YYYY-MM-DD\" or null\n" +
			"  - \"category\": string or null\n\n"

	rules := fmt.Sprintf(
		"Rules:\n"+
			"- Today is %s. Resolve relative dates like \"yesterday\" against it.\n"+
			"- If no date is mentioned at all, use null.\n"+
			"- Return ONLY valid raw JSON, no code fences, no Markdown.\n",
		today.String())

	return base + categoriesPrompt() + "\n" + rules
}

// answerPrompt embeds the full record set as a CSV text block ahead of the
// user's free-text question.
func answerPrompt(records []domain.SavedRecord, question string) (string, error) {
	table, err := report.RecordsCSV(records)
	if err != nil {
		return "", fmt.Errorf("render records: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Below is the user's full\n")
	b.WriteString("expense history as CSV:\n\n")
	b.WriteString(table)
	b.WriteString("\nAnswer the user's question using ONLY this data. Be concise and\n")
	b.WriteString("concrete; quote amounts and dates from the data where helpful.\n\n")
	b.WriteString("Question: " + question + "\n")
	return b.String(), nil
}

// leaksPrompt embeds the record set with the fixed analytical rubric.
func leaksPrompt(records []domain.SavedRecord) (string, error) {
	table, err := report.RecordsCSV(records)
	if err != nil {
		return "", fmt.Errorf("render records: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Below is the user's full\n")
	b.WriteString("expense history as CSV:\n\n")
	b.WriteString(table)
	b.WriteString("\nFind \"cash leaks\": recurring or inefficient spending the user\n")
	b.WriteString("could plug. Apply this rubric:\n")
	b.WriteString("1. Fees: bank charges, delivery fees, service charges, penalties.\n")
	b.WriteString("2. High-frequency vendors: the same merchant appearing often for\n")
	b.WriteString("   small amounts that add up.\n")
	b.WriteString("3. Substitutions: cheaper alternatives for habitual purchases.\n\n")
	b.WriteString("Respond with a ranked list of tips, most impactful first. For each\n")
	b.WriteString("tip name the pattern you found, the rough amount involved, and one\n")
	b.WriteString("concrete suggestion. Skip rubric items with no evidence in the data.\n")
	return b.String(), nil
}
