package prompt

// Response kinds a prompt can declare.
const (
	ResponseText = "text"
	ResponseJSON = "json"
	ResponseList = "list"
)

// Diff budgets a prompt can declare. The service truncates the "diff"
// variable to the matching configured size.
const (
	DiffLimitDiff   = "diff"
	DiffLimitPRDiff = "pr_diff"
)

// Config describes a prompt definition loaded from YAML frontmatter.
type Config struct {
	Slug           string         `yaml:"slug" validate:"required"`
	Description    string         `yaml:"description,omitempty"`
	MaxTokens      int            `yaml:"max_tokens" validate:"required,min=1,max=32000"`
	Temperature    *float64       `yaml:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	DiffLimit      string         `yaml:"diff_limit,omitempty" validate:"omitempty,oneof=diff pr_diff"`
	Response       string         `yaml:"response,omitempty" validate:"omitempty,oneof=text json list"`
	Input          InputSpec      `yaml:"input,omitempty"`
	SystemTemplate string         `yaml:"system_template,omitempty"`
	UserTemplate   string         `yaml:"user_template,omitempty" validate:"required"`
	ProviderHints  map[string]any `yaml:"provider_hints,omitempty"`
}

// InputSpec lists the variables a prompt expects.
type InputSpec struct {
	RequiredVariables []string `yaml:"required_variables,omitempty" validate:"dive,required"`
	OptionalVariables []string `yaml:"optional_variables,omitempty" validate:"dive,required"`
}

// Prompt wraps a validated prompt configuration with its source.
type Prompt struct {
	Config Config
	Source string
}
