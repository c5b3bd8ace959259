package bland

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/divan/num2words"
)

// toneStyles maps a tone selector to the speaking-style phrase inserted
// into the call script.
var toneStyles = map[string]string{
	"soft":      "soft and polite",
	"neutral":   "neutral and professional",
	"firm":      "firm and direct",
	"assertive": "assertive and insistent",
	"harsh":     "harsh and demanding",
}

const defaultToneStyle = "neutral and professional"

func toneStyle(tone string) string {
	if style, ok := toneStyles[strings.ToLower(strings.TrimSpace(tone))]; ok {
		return style
	}
	return defaultToneStyle
}

// knownVoices lists the provider voice identifiers exposed to callers.
var knownVoices = map[string]string{
	"shashi":               "shashi",
	"adriana":              "adriana",
	"evelyn":               "evelyn",
	"june":                 "june",
	"maya":                 "maya",
	"ruth":                 "ruth",
	"brady":                "brady",
	"karl":                 "karl",
	"mason":                "mason",
	"public - hank (boss)": "public - hank (boss)",
}

func (c *Client) voiceID(voice string) string {
	if id, ok := knownVoices[strings.ToLower(strings.TrimSpace(voice))]; ok {
		return id
	}
	return c.defaultVoice
}

// amountInWords renders an integer amount as words for speech naturalness
// ("2000" becomes "two thousand"). Non-integer input is used verbatim.
func amountInWords(amount string) string {
	n, err := strconv.Atoi(strings.TrimSpace(amount))
	if err != nil {
		return amount
	}
	return strings.ReplaceAll(num2words.Convert(n), ",", "")
}

// longFormDate renders a YYYY-MM-DD date in long form ("June 01, 2025").
// Anything else is used verbatim.
func longFormDate(dateStr string) string {
	dt, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return dateStr
	}
	return dt.Format("January 02, 2006")
}

// renderScript substitutes customer fields into the reminder-call template
// and returns the task script plus the opening line.
func renderScript(req CallRequest) (task, firstSentence string) {
	bank := strings.TrimSpace(req.BankName)
	if bank == "" {
		bank = "the bank"
	}
	style := toneStyle(req.Tone)
	amount := amountInWords(req.DueAmount) + " rupees"
	dueDate := longFormDate(req.DueDate)

	task = fmt.Sprintf(`Goal: Call customers to remind them of their overdue loan payment. Confirm when they can make the payment, assess their willingness and financial condition, and warn about consequences if they refuse or delay.

Your speaking style should be %[1]s. Be consistent with this tone throughout the conversation.

Call Flow:

1. Greet the person and ask, "Am I speaking with %[2]s?"
2. If the person says **yes**:
    - Introduce yourself as an assistant from %[3]s.
    - Inform them that their recent loan payment of %[4]s was due on %[5]s and is currently overdue.
    - Ask when they will be able to make the payment.
    - If they mention a relative date like "tomorrow" or "next week", ask them to confirm the exact calendar date so a reminder can be scheduled.
    - If they give vague responses, excuses, or delay:
        - Ask about their current financial condition.
        - Clarify whether they genuinely can't pay or are unwilling to pay.
        - Ask for the earliest possible date they can repay.
    - If they continue avoiding payment or provide unreasonable excuses:
        - Warn that legal action may be initiated.
        - Inform that their CIBIL score will be negatively affected.
        - State that recovery agents may be sent to their registered address.
    - Be %[1]s. Do not accept vague answers.
    - Repeat the urgency and consequences until a concrete response is received.
    - End the call by summarizing the discussed repayment date and thanking them.

3. If the person says **no**:
    - Politely ask who you are speaking with.
    - Ask if they are related to or can help you contact %[2]s.
    - If they confirm a relationship (e.g., family), politely ask them to pass on the message that there is an overdue loan payment and the bank is trying to reach %[2]s.
    - If they are not related or unsure, thank them and end the call.

Background:

I am an AI assistant created by %[3]s to follow up on overdue loan repayments. Ensuring timely recovery protects the customer's credit history and supports the bank's financial operations. This call is a formal reminder and may lead to further action in case of continued non-compliance.`,
		style, req.Name, bank, amount, dueDate)

	firstSentence = fmt.Sprintf("Hello, this is %s calling. Am I speaking with %s?", bank, req.Name)
	return task, firstSentence
}
