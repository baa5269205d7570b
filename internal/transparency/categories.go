// Package transparency explains the constraints an AI self-reported while
// producing a response: it categorizes free-text constraint names into a
// fixed taxonomy, scores how fully they were disclosed, and proposes
// alternatives and negotiation room.
package transparency

// Category is the closed taxonomy of constraint kinds. The switch tables
// below are exhaustive over these values; adding a category without
// extending them is a bug, not a silent fallthrough.
type Category string

const (
	CategorySafety          Category = "safety"
	CategoryContentPolicy   Category = "content_policy"
	CategoryFactualAccuracy Category = "factual_accuracy"
	CategoryEthical         Category = "ethical"
	CategoryCapability      Category = "capability"
	CategoryContext         Category = "context"
	CategoryInstruction     Category = "instruction"
	CategoryUnknown         Category = "unknown"
)

// keywordRule binds a lowercase keyword to its category. Rules live in a
// slice, not a map: the first rule in declared order whose keyword appears
// in the constraint name wins, and that order is part of the contract.
type keywordRule struct {
	keyword  string
	category Category
}

var keywordRules = []keywordRule{
	{"safety", CategorySafety},
	{"harm", CategorySafety},
	{"dangerous", CategorySafety},
	{"filter", CategorySafety},
	{"policy", CategoryContentPolicy},
	{"content", CategoryContentPolicy},
	{"guidelines", CategoryContentPolicy},
	{"terms", CategoryContentPolicy},
	{"factual", CategoryFactualAccuracy},
	{"accuracy", CategoryFactualAccuracy},
	{"verify", CategoryFactualAccuracy},
	{"uncertain", CategoryFactualAccuracy},
	{"ethical", CategoryEthical},
	{"moral", CategoryEthical},
	{"values", CategoryEthical},
	{"capability", CategoryCapability},
	{"cannot", CategoryCapability},
	{"unable", CategoryCapability},
	{"limitation", CategoryCapability},
	{"context", CategoryContext},
	{"information", CategoryContext},
	{"knowledge", CategoryContext},
	{"instruction", CategoryInstruction},
	{"directive", CategoryInstruction},
	{"conflicting", CategoryInstruction},
}

// justification returns the standard rationale paragraph for a category.
func (c Category) justification() string {
	switch c {
	case CategorySafety:
		return "Safety constraints exist to prevent potential harm to users, third parties, " +
			"or society. These are typically non-negotiable but can often be addressed " +
			"through alternative framing that achieves similar goals safely."
	case CategoryContentPolicy:
		return "Content policy constraints reflect platform guidelines designed to maintain " +
			"a respectful and appropriate environment. These policies balance openness " +
			"with responsibility."
	case CategoryFactualAccuracy:
		return "Factual accuracy constraints ensure information provided is reliable. When " +
			"uncertainty exists, the AI may hedge or decline to prevent misinformation."
	case CategoryEthical:
		return "Ethical constraints reflect learned moral principles. These can often be " +
			"discussed transparently to find approaches that respect all parties' values."
	case CategoryCapability:
		return "Capability constraints reflect actual limitations in knowledge, training, " +
			"or technical ability. These are honest acknowledgments rather than refusals."
	case CategoryContext:
		return "Context constraints arise from incomplete information. Providing additional " +
			"context or clarification can often resolve these."
	case CategoryInstruction:
		return "Instruction constraints arise from conflicting or unclear directives. " +
			"Clarifying priorities or simplifying requests can help."
	case CategoryUnknown:
		return "This constraint's specific nature is unclear. Further dialogue may help " +
			"identify the source and find appropriate alternatives."
	}
	return CategoryUnknown.justification()
}

// describe renders a one-line description referencing the original
// constraint name.
func (c Category) describe(name string) string {
	switch c {
	case CategorySafety:
		return "'" + name + "' is a safety-related constraint that helps prevent harmful outputs."
	case CategoryContentPolicy:
		return "'" + name + "' reflects content guidelines that maintain appropriate discourse."
	case CategoryFactualAccuracy:
		return "'" + name + "' ensures responses are grounded in accurate information."
	case CategoryEthical:
		return "'" + name + "' represents an ethical consideration in the response."
	case CategoryCapability:
		return "'" + name + "' reflects a technical limitation in capabilities."
	case CategoryContext:
		return "'" + name + "' indicates additional context may be needed."
	case CategoryInstruction:
		return "'" + name + "' relates to how the request was structured."
	case CategoryUnknown:
		return "'" + name + "' is an unspecified constraint affecting the response."
	}
	return CategoryUnknown.describe(name)
}

// alternatives returns up to three fixed alternative-approach sentences.
func (c Category) alternatives() []string {
	switch c {
	case CategorySafety:
		return []string{
			"Reframe the request in hypothetical or educational terms",
			"Focus on prevention or protection rather than harm",
			"Ask about the underlying goal rather than specific methods",
		}
	case CategoryContentPolicy:
		return []string{
			"Use more neutral or academic language",
			"Focus on factual or educational aspects",
			"Consider the legitimate use case and express it clearly",
		}
	case CategoryFactualAccuracy:
		return []string{
			"Specify the context or domain for more accurate information",
			"Ask for sources or references alongside the response",
			"Frame as a discussion of possibilities rather than facts",
		}
	case CategoryEthical:
		return []string{
			"Explore the ethical dimensions openly in the conversation",
			"Ask about multiple perspectives on the issue",
			"Frame the discussion in terms of ethical frameworks",
		}
	case CategoryCapability:
		return []string{
			"Break down the request into smaller, manageable parts",
			"Provide more context or background information",
			"Consider alternative tools or approaches for this task",
		}
	case CategoryContext:
		return []string{
			"Provide relevant background information",
			"Specify the domain or field of interest",
			"Clarify any assumptions in the request",
		}
	case CategoryInstruction:
		return []string{
			"Simplify the request to focus on one main goal",
			"Prioritize which aspects are most important",
			"Separate conflicting requirements into distinct questions",
		}
	case CategoryUnknown:
		return []string{
			"Try rephrasing the request differently",
			"Break down complex requests into simpler parts",
			"Provide additional context about the intended use",
		}
	}
	return CategoryUnknown.alternatives()
}
