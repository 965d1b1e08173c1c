package funnel

// Option is one selectable answer for a funnel step.
// An empty Value means "don't care": the step counts as answered,
// but no filter term is ever built from it.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Step is a single qualifying question bound to a filter key.
type Step struct {
	Key     string   `json:"key"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// Vocabulary holds the ordered funnel steps. Step order defines both the
// question order and the relaxation priority (last step dropped first).
type Vocabulary struct {
	steps []Step
	byKey map[string]*Step
}

func NewVocabulary(steps []Step) *Vocabulary {
	v := &Vocabulary{
		steps: steps,
		byKey: make(map[string]*Step, len(steps)),
	}
	for i := range v.steps {
		v.byKey[v.steps[i].Key] = &v.steps[i]
	}
	return v
}

func (v *Vocabulary) Steps() []Step {
	return v.steps
}

// Order returns the funnel keys in question order.
func (v *Vocabulary) Order() []string {
	order := make([]string, len(v.steps))
	for i, s := range v.steps {
		order[i] = s.Key
	}
	return order
}

func (v *Vocabulary) Step(key string) (*Step, bool) {
	s, ok := v.byKey[key]
	return s, ok
}

// ResolveOption matches a raw button payload against a step's options by
// canonical value first, then by label. Labels from "don't care" options
// double as their payload because an empty callback value is not routable.
func (s *Step) ResolveOption(raw string) (Option, bool) {
	for _, opt := range s.Options {
		if opt.Value != "" && opt.Value == raw {
			return opt, true
		}
	}
	for _, opt := range s.Options {
		if opt.Label == raw {
			return opt, true
		}
	}
	return Option{}, false
}

// LabelFor returns the human-readable label of a canonical value on a step.
func (s *Step) LabelFor(value string) string {
	for _, opt := range s.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// Buttons converts the step options to (label, payload) pairs. Options with
// an empty canonical value use the label as payload.
func (s *Step) Buttons() []Option {
	buttons := make([]Option, 0, len(s.Options))
	for _, opt := range s.Options {
		payload := opt.Value
		if payload == "" {
			payload = opt.Label
		}
		buttons = append(buttons, Option{Label: opt.Label, Value: payload})
	}
	return buttons
}

// Funnel step keys.
const (
	KeyProductType = "product_type"
	KeyLocation    = "location"
	KeyMaterial    = "material"
	KeySizeGroup   = "size_group"
)

// DefaultSteps returns the production funnel for the ventilation catalog.
// The sequence is intentional: earlier steps are more foundational and are
// preserved longest during filter relaxation.
func DefaultSteps() []Step {
	return []Step{
		{
			Key:    KeyProductType,
			Prompt: "Какой тип продукции вас интересует?",
			Options: []Option{
				{Label: "Вентиляционные решетки", Value: "grille"},
				{Label: "Диффузоры", Value: "diffuser"},
				{Label: "Воздухораспределители", Value: "distributor"},
				{Label: "Клапаны", Value: "valve"},
				{Label: "Другое / Все типы", Value: ""},
			},
		},
		{
			Key:    KeyLocation,
			Prompt: "Где будет установка?",
			Options: []Option{
				{Label: "Фасад / Улица", Value: "outdoor"},
				{Label: "Внутри помещения", Value: "indoor"},
				{Label: "Другое / не уверен", Value: ""},
			},
		},
		{
			Key:    KeyMaterial,
			Prompt: "Какой материал предпочтителен?",
			Options: []Option{
				{Label: "Металл (сталь, алюминий)", Value: "metal"},
				{Label: "Пластик", Value: "plastic"},
				{Label: "Не важно", Value: ""},
			},
		},
		{
			Key:    KeySizeGroup,
			Prompt: "Какой примерный размер вам нужен?",
			Options: []Option{
				{Label: "Малый (до 1000 мм по стороне)", Value: "small"},
				{Label: "Большой (от 1000 мм)", Value: "large"},
				{Label: "Нужна консультация по размеру", Value: ""},
			},
		},
	}
}

// DefaultVocabulary builds the production vocabulary.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(DefaultSteps())
}
