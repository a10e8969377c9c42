// internal/app/system/limits/limits.go
package limits

// Request body size limits. Oversized bodies are rejected before decoding.
const (
	// MaxJSONBody covers auth, join, team and preference requests.
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxQuestBody allows room for a long quest description.
	MaxQuestBody = 256 << 10 // 256 KB

	// MaxFeedbackBody bounds survey answers and free-text comments.
	MaxFeedbackBody = 32 << 10 // 32 KB
)
