// internal/infra/template/composer.go
package template

import (
	"fmt"
	"hash/fnv"
	"strings"

	"outreach_engine/internal/domain/campaign"
	"outreach_engine/internal/domain/lead"
	"outreach_engine/internal/domain/mail"
)

// pair is one subject/body template. Placeholders use the {{Field}} form
// matching the Apollo export column names.
type pair struct {
	subject string
	body    string
}

var firstTouchTemplates = []pair{
	{
		subject: "Quick idea for {{Company Name}} 💡",
		body: `<p>Hi {{First Name}},</p>

<p>I build custom booking systems, websites, and tools that help small businesses save time and get more clients.</p>

<p>I just finished one for a barber — totally tailored to him — and he's already seeing more bookings through it. I code everything myself — no big agency, no BS.</p>

<p>Would you be open to a quick call sometime this week to see what I could build for {{Company Name}}?</p>

<p>Best regards,<br>
Felix van Dijk<br>
Founder — F van Dijk Ltd<br>
📞 07956 171906<br>
🌐 https://felixvandijk.dev/business.html</p>`,
	},
	{
		subject: "Helping {{Company Name}} run smoother",
		body: `<p>Hey {{First Name}},</p>

<p>I'm a freelance developer helping small businesses like yours cut out repetitive tasks with custom software and automation.</p>

<p>Not some big firm — it's just me, and I build everything from scratch based on what you actually need. I've done calendars, booking flows, dashboards, everything.</p>

<p>Would you be open to a 10-minute call to see if there's anything I could simplify for {{Company Name}}?</p>

<p>Best regards,<br>
Felix van Dijk<br>
Founder — F van Dijk Ltd<br>
📞 07956 171906<br>
🌐 https://felixvandijk.dev/business.html</p>`,
	},
	{
		subject: "Built one tool — got 10+ new clients",
		body: `<p>Hi {{First Name}},</p>

<p>I recently built a custom tool for a small local business and they picked up 10+ new clients in their first week just from simplifying their booking process.</p>

<p>I do everything myself — websites, automation tools, custom booking platforms — no agencies, no templates, just results.</p>

<p>If I could help {{Company Name}} do something similar, would you be up for a quick chat this week?</p>

<p>Best regards,<br>
Felix van Dijk<br>
Founder — F van Dijk Ltd<br>
📞 07956 171906<br>
🌐 https://felixvandijk.dev/business.html</p>`,
	},
}

// followUpTemplates are indexed by sequence: sequence 1 sends the first,
// sequence 3 the last. Sequences past the end reuse the final template.
var followUpTemplates = []pair{
	{
		subject: "Re: Quick idea for {{Company Name}} (did this get buried?)",
		body: `<p>Hi {{First Name}},</p>

<p>I sent you a message last week about building custom tools for {{Company Name}}, but I know inboxes can get crazy.</p>

<p>I just helped another business owner automate their client booking process — they went from spending 2 hours a day on scheduling to having it all happen automatically. Now they're focusing on what they do best instead of admin work.</p>

<p>If streamlining any part of {{Company Name}}'s operations sounds useful, I'd love to have a quick 10-minute conversation about what's possible.</p>

<p>Best regards,<br>
Felix van Dijk<br>
Founder — F van Dijk Ltd<br>
📞 07956 171906<br>
🌐 https://felixvandijk.dev/business.html</p>`,
	},
	{
		subject: "{{Company Name}} — 3 ways I could help",
		body: `<p>Hi {{First Name}},</p>

<p>I've been thinking about {{Company Name}} and wanted to share 3 specific ways I could help:</p>

<p>1. <strong>Custom booking system</strong> — eliminate back-and-forth emails and missed appointments<br>
2. <strong>Client dashboard</strong> — give customers 24/7 access to their information<br>
3. <strong>Process automation</strong> — turn repetitive tasks into automatic workflows</p>

<p>I recently built a custom portal for a consulting firm that saved them 15 hours per week on client management alone. The owner told me it was the best investment he'd made in years.</p>

<p>Would any of these be valuable for {{Company Name}}? Happy to jump on a brief call to explore what makes sense.</p>

<p>Best regards,<br>
Felix van Dijk<br>
Founder — F van Dijk Ltd<br>
📞 07956 171906<br>
🌐 https://felixvandijk.dev/business.html</p>`,
	},
	{
		subject: "Last email — {{Company Name}} automation opportunity",
		body: `<p>Hi {{First Name}},</p>

<p>I don't want to keep bothering you, so this will be my last email about helping {{Company Name}} with custom automation.</p>

<p>I'm only taking on 2 more projects before Christmas, and I had {{Company Name}} in mind for one of them. The businesses I work with typically see results within the first month — better client experience, less admin time, more revenue.</p>

<p>If you're interested in exploring what's possible, just reply and I'll send over some examples of what I've built for similar businesses.</p>

<p>If not, no worries at all — I completely understand you're busy running {{Company Name}}.</p>

<p>Best regards,<br>
Felix van Dijk<br>
Founder — F van Dijk Ltd<br>
📞 07956 171906<br>
🌐 https://felixvandijk.dev/business.html</p>`,
	},
}

var fillerSubjects = []string{
	"System Test",
	"Connection Check",
	"Delivery Test",
	"Mail System Verification",
	"SMTP Test Message",
}

const fillerBody = `<p>This is an automated system test email.</p>

<p>This message is sent to verify email delivery and maintain sender reputation.</p>

<p>Please disregard this message.</p>

<p>Best regards,<br>
Email System</p>`

// Engine renders messages from the built-in rotating templates. Rotation is
// keyed on the recipient address, so composing the same candidate twice
// yields the same message.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Compose(c campaign.Candidate) (mail.Message, error) {
	switch c.Category {
	case campaign.CategoryFirstTouch:
		i := rotate(c.Lead.Email, len(firstTouchTemplates))
		t := firstTouchTemplates[i]
		return mail.Message{
			Subject:  merge(t.subject, c.Lead),
			HTMLBody: merge(t.body, c.Lead),
			Template: fmt.Sprintf("Template %d", i+1),
		}, nil
	case campaign.CategoryFollowUp:
		if c.Sequence < 1 {
			return mail.Message{}, fmt.Errorf("follow-up to %s has no sequence number", c.Lead.Email)
		}
		i := c.Sequence - 1
		if i >= len(followUpTemplates) {
			i = len(followUpTemplates) - 1
		}
		t := followUpTemplates[i]
		return mail.Message{
			Subject:  merge(t.subject, c.Lead),
			HTMLBody: merge(t.body, c.Lead),
			Template: fmt.Sprintf("Follow-up %d", c.Sequence),
		}, nil
	case campaign.CategoryFiller:
		return mail.Message{
			Subject:  fillerSubjects[rotate(c.Lead.Email, len(fillerSubjects))],
			HTMLBody: fillerBody,
		}, nil
	default:
		return mail.Message{}, fmt.Errorf("no template for category %q", c.Category)
	}
}

// merge substitutes every placeholder in one pass. Missing first name and
// organization fall back to neutral wording rather than an empty hole.
func merge(tpl string, l lead.Lead) string {
	first := l.FirstName
	if first == "" {
		first = "there"
	}
	org := l.Organization
	if org == "" {
		org = "your company"
	}
	r := strings.NewReplacer(
		"{{Company Name}}", org,
		"{{First Name}}", first,
		"{{Last Name}}", l.LastName,
		"{{Title}}", l.Title,
		"{{City}}", l.City,
		"{{State}}", l.State,
		"{{Country}}", l.Country,
		"{{industry or location}}", industryOrLocation(l),
	)
	return r.Replace(tpl)
}

// industryOrLocation prefers the lead's industry, then a city/state/country
// location string (country only when it is not the US), then a generic stand-in.
func industryOrLocation(l lead.Lead) string {
	if ind := strings.TrimSpace(l.Industry); ind != "" {
		return strings.ToLower(ind)
	}
	var parts []string
	if l.City != "" {
		parts = append(parts, l.City)
	}
	if l.State != "" {
		parts = append(parts, l.State)
	}
	if l.Country != "" && strings.ToUpper(l.Country) != "US" {
		parts = append(parts, l.Country)
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return "your area"
}

func rotate(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
