package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/reginold/asset-management/internal/model"
	"github.com/reginold/asset-management/internal/review"
)

const groupPreviewSize = 5

// Prompter is the interactive terminal implementation of the review
// prompting surface.
type Prompter struct {
	ctx        context.Context
	reader     *NonBlockingReader
	writer     io.Writer
	categories []string
}

// NewPrompter creates a prompter reading from in and writing to out.
// Prompts abort cleanly when ctx is canceled.
func NewPrompter(ctx context.Context, in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		ctx:        ctx,
		reader:     NewNonBlockingReader(in),
		writer:     out,
		categories: model.CategoryNames(),
	}
}

// ConfirmGroup presents a merchant group and asks how to handle it.
func (p *Prompter) ConfirmGroup(group review.Group) (review.GroupAction, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", BoldStyle.Render(group.Pattern), SubtleStyle.Render(fmt.Sprintf("(%d merchants, %s total)", len(group.Candidates), FormatYen(group.TotalAmount))))
	for i, c := range group.Candidates {
		if i == groupPreviewSize {
			fmt.Fprintf(&b, "  %s\n", SubtleStyle.Render(fmt.Sprintf("... and %d more", len(group.Candidates)-groupPreviewSize)))
			break
		}
		fmt.Fprintf(&b, "  %s  %s\n", c.Merchant, SubtleStyle.Render(FormatYen(c.TotalAmount)))
	}
	fmt.Fprintln(p.writer, RenderBox(strings.TrimRight(b.String(), "\n")))

	for {
		fmt.Fprint(p.writer, FormatPrompt("[b]atch apply one category, review [i]ndividually, or [s]kip? "))
		answer, err := p.reader.ReadLine(p.ctx)
		if err != nil {
			return review.ActionSkip, err
		}
		switch strings.ToLower(answer) {
		case "b", "batch":
			return review.ActionBatch, nil
		case "i", "individual":
			return review.ActionIndividual, nil
		case "s", "skip", "":
			return review.ActionSkip, nil
		}
		fmt.Fprintln(p.writer, FormatWarning("Please answer b, i, or s."))
	}
}

// PickCategory asks for one category to apply to a whole group.
func (p *Prompter) PickCategory(group review.Group) (string, error) {
	fmt.Fprintln(p.writer, FormatInfo(fmt.Sprintf("Pick a category for all %d merchants in %q:", len(group.Candidates), group.Pattern)))
	return p.askCategory(false, "")
}

// ReviewMerchant asks for a verdict on a single merchant, showing the
// engine's current suggestion when it has one.
func (p *Prompter) ReviewMerchant(c review.Candidate) (string, bool, error) {
	label := c.Merchant
	if c.Count > 0 {
		label = fmt.Sprintf("%s  %s", c.Merchant, SubtleStyle.Render(fmt.Sprintf("%s across %d transactions", FormatYen(c.TotalAmount), c.Count)))
	}
	fmt.Fprintf(p.writer, "\n%s %s\n", MoneyIcon, label)

	suggestion := ""
	if c.Guess.Category != "" && c.Guess.Category != model.CategoryUnknown && c.Guess.Confidence > 0 {
		suggestion = c.Guess.Category
		fmt.Fprintf(p.writer, "%s Current suggestion: %s %s\n", BrainIcon, BoldStyle.Render(suggestion), SubtleStyle.Render(fmt.Sprintf("(%.2f, %s)", c.Guess.Confidence, c.Guess.Method)))
	}

	category, err := p.askCategory(true, suggestion)
	if err != nil {
		return "", false, err
	}
	if category == "" {
		return "", false, nil
	}
	return category, true, nil
}

// askCategory prints the numbered category menu and reads a choice.
// With allowSkip, an empty or "s" answer returns "" without error. A
// non-empty suggestion makes "a" accept it directly.
func (p *Prompter) askCategory(allowSkip bool, suggestion string) (string, error) {
	for i, category := range p.categories {
		fmt.Fprintf(p.writer, "  %2d. %s\n", i+1, category)
	}

	prompt := "Category number or name"
	if suggestion != "" {
		prompt += ", or [a]ccept the suggestion"
	}
	if allowSkip {
		prompt += " (enter to skip)"
	}

	for {
		fmt.Fprint(p.writer, FormatPrompt(prompt+": "))
		answer, err := p.reader.ReadLine(p.ctx)
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)

		if allowSkip && (answer == "" || strings.EqualFold(answer, "s")) {
			return "", nil
		}

		if suggestion != "" && (strings.EqualFold(answer, "a") || strings.EqualFold(answer, "accept")) {
			return suggestion, nil
		}

		if n, convErr := strconv.Atoi(answer); convErr == nil {
			if n >= 1 && n <= len(p.categories) {
				return p.categories[n-1], nil
			}
			fmt.Fprintln(p.writer, FormatWarning(fmt.Sprintf("Pick a number between 1 and %d.", len(p.categories))))
			continue
		}

		matched := ""
		for _, category := range p.categories {
			if strings.EqualFold(answer, category) {
				matched = category
				break
			}
		}
		if matched != "" {
			return matched, nil
		}
		fmt.Fprintln(p.writer, FormatWarning("Not a known category, try again."))
	}
}

// NothingToReview tells the reviewer the queue is empty.
func (p *Prompter) NothingToReview() {
	fmt.Fprintln(p.writer, SuccessStyle.Render(CheckIcon+" Nothing to review. Every merchant has a category."))
}

// ShowSummary presents the finished session.
func (p *Prompter) ShowSummary(session *model.ReviewSession) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Review session\n\n", ChartIcon)
	fmt.Fprintf(&b, "Merchants reviewed: %d\n", session.MerchantsReviewed)
	fmt.Fprintf(&b, "Patterns learned:   %d\n", len(session.PatternsLearned))

	breakdown := session.CategoryBreakdown()
	if len(breakdown) > 0 {
		categories := make([]string, 0, len(breakdown))
		for category := range breakdown {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool {
			if breakdown[categories[i]] != breakdown[categories[j]] {
				return breakdown[categories[i]] > breakdown[categories[j]]
			}
			return categories[i] < categories[j]
		})
		fmt.Fprintf(&b, "\nBy category:\n")
		for _, category := range categories {
			fmt.Fprintf(&b, "  %-18s %d\n", category, breakdown[category])
		}
	}
	fmt.Fprintln(p.writer, RenderBox(strings.TrimRight(b.String(), "\n")))
}

// FormatYen renders an amount as yen with comma grouping.
func FormatYen(amount float64) string {
	n := int64(math.Round(amount))
	negative := n < 0
	if negative {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	if negative {
		return "-¥" + b.String()
	}
	return "¥" + b.String()
}
