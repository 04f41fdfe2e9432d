package genai

// inlineData бинарные данные части контента в base64
type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// contentPart часть контента: текст или картинка
type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

// content сообщение в диалоге с моделью
type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

// imageConfig параметры генерируемой картинки
type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

// generationConfig параметры генерации
type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

// generateContentRequest тело запроса generateContent
type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

// promptFeedback вердикт модерации по запросу
type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// candidate один вариант ответа модели
type candidate struct {
	Content      *content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// generateContentResponse тело ответа generateContent
type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates,omitempty"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}
