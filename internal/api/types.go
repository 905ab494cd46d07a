package api

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateRecipeRequest is the JSON body of an imageless create. Multipart
// creates carry the same fields as form values plus the image part.
type CreateRecipeRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Ingredients        []string `json:"ingredients"`
	Instructions       []string `json:"instructions"`
	PrepTimeMinutes    int      `json:"prepTimeMinutes"`
	CookingTimeMinutes int      `json:"cookingTimeMinutes"`
	ServingSize        int      `json:"servingSize"`
	IsPublished        bool     `json:"isPublished"`
}
