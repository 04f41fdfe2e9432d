package alerter

type Config struct {
	BotToken       string `envconfig:"BOT_TOKEN"`
	AlertChatID    int64  `envconfig:"ALERT_CHAT_ID"`
	BusinessChatID int64  `envconfig:"BUSINESS_CHAT_ID"`
}
