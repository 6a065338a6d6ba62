package summaries

// Record is one persisted summary with the parameters it was generated under.
type Record struct {
	ID                int64  `json:"id"`
	Input             string `json:"input"`
	Output            string `json:"output"`
	NumWords          int    `json:"num_words"`
	IsBullet          bool   `json:"is_bullet"`
	SummaryCategory   string `json:"summary_category"`
	NumBulletPoints   int    `json:"num_bullet_points"`
	Instruction       string `json:"instruction"`
	InstructionPrefix string `json:"instruction_prefix"`
	TokenLength       int    `json:"token_length"`
}

// Parameters is the editable generation-parameter subset of a record.
type Parameters struct {
	NumWords        int    `json:"num_words"`
	IsBullet        bool   `json:"is_bullet"`
	SummaryCategory string `json:"summary_category"`
	NumBulletPoints int    `json:"num_bullet_points"`
}
