package settings

// DefaultWakePhrase is used when no settings file exists.
const DefaultWakePhrase = "ola jarvis"

// DefaultLLMProvider is used when the document omits llm_provider.
const DefaultLLMProvider = "ollama"

// Action is one step of an execution plan.
type Action struct {
	ActionType    string  `json:"action_type" yaml:"action_type"`
	Target        *string `json:"target" yaml:"target,omitempty"`
	Position      *string `json:"position" yaml:"position,omitempty"`
	MonitorIndex  *int    `json:"monitor_index" yaml:"monitor_index,omitempty"`
	VolumeChange  *int    `json:"volume_change" yaml:"volume_change,omitempty"`
	SecondApp     *string `json:"second_app" yaml:"second_app,omitempty"`
	MonitorAction *string `json:"monitor_action" yaml:"monitor_action,omitempty"`
}

// ExecutionPlan is a named sequence of actions.
type ExecutionPlan struct {
	Name         string   `json:"name" yaml:"name"`
	Actions      []Action `json:"actions" yaml:"actions"`
	RunOnStartup *bool    `json:"run_on_startup" yaml:"run_on_startup,omitempty"`
}

// RunsOnStartup reports whether the plan is flagged to run at login.
func (p ExecutionPlan) RunsOnStartup() bool {
	return p.RunOnStartup != nil && *p.RunOnStartup
}

// ChromeProfile maps a spoken profile name to its browser shortcut.
type ChromeProfile struct {
	Name         string `json:"name" yaml:"name"`
	ShortcutPath string `json:"shortcut_path" yaml:"shortcut_path"`
}

// CustomApp maps a spoken application name to its executable.
type CustomApp struct {
	Name    string `json:"name" yaml:"name"`
	ExePath string `json:"exe_path" yaml:"exe_path"`
}

// Settings is the whole persisted document.
type Settings struct {
	WakePhrase     string          `json:"wake_phrase" yaml:"wake_phrase"`
	ExecutionPlans []ExecutionPlan `json:"execution_plans" yaml:"execution_plans"`
	ChromeProfiles []ChromeProfile `json:"chrome_profiles" yaml:"chrome_profiles"`
	CustomApps     []CustomApp     `json:"custom_apps" yaml:"custom_apps"`
	LLMProvider    string          `json:"llm_provider" yaml:"llm_provider"`
	LLMModel       *string         `json:"llm_model" yaml:"llm_model,omitempty"`
	OpenAIAPIKey   *string         `json:"openai_api_key" yaml:"openai_api_key,omitempty"`
	OpenAIBaseURL  *string         `json:"openai_base_url" yaml:"openai_base_url,omitempty"`
}

// Default returns the document used when no settings file exists.
func Default() Settings {
	return Settings{
		WakePhrase:     DefaultWakePhrase,
		ExecutionPlans: []ExecutionPlan{},
		ChromeProfiles: []ChromeProfile{},
		CustomApps:     []CustomApp{},
		LLMProvider:    DefaultLLMProvider,
	}
}

// normalize replaces nil lists so the document always serializes arrays.
func (s *Settings) normalize() {
	if s.ExecutionPlans == nil {
		s.ExecutionPlans = []ExecutionPlan{}
	}
	for i := range s.ExecutionPlans {
		if s.ExecutionPlans[i].Actions == nil {
			s.ExecutionPlans[i].Actions = []Action{}
		}
	}
	if s.ChromeProfiles == nil {
		s.ChromeProfiles = []ChromeProfile{}
	}
	if s.CustomApps == nil {
		s.CustomApps = []CustomApp{}
	}
	if s.LLMProvider == "" {
		s.LLMProvider = DefaultLLMProvider
	}
}

// StartupPlans returns the plans flagged to run at login, in document order.
func (s Settings) StartupPlans() []ExecutionPlan {
	var plans []ExecutionPlan
	for _, plan := range s.ExecutionPlans {
		if plan.RunsOnStartup() {
			plans = append(plans, plan)
		}
	}
	return plans
}

// SaveResult echoes what was written and where.
type SaveResult struct {
	Settings Settings `json:"settings"`
	Path     string   `json:"path"`
}
