package genai

type Config struct {
	BaseURL     string `envconfig:"BASE_URL"`
	ApiVersion  string `envconfig:"VERSION"`
	ApiKey      string `envconfig:"API_KEY"`
	Model       string `envconfig:"MODEL"`
	PromptModel string `envconfig:"PROMPT_MODEL"`
}
