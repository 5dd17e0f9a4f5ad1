package usecase

import (
	"fmt"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

const citationExcerptChars = 160

// FormatLocation renders a chunk location as a display string: "pp. 5-6" or
// "p. 5" for paginated sources, "02:05 - 02:25" clock offsets for transcribed
// audio, empty for unknown locations.
func FormatLocation(loc domain.Location) string {
	switch loc.Kind {
	case domain.LocationPages:
		if loc.PageStart == loc.PageEnd {
			return fmt.Sprintf("p. %d", loc.PageStart)
		}
		return fmt.Sprintf("pp. %d-%d", loc.PageStart, loc.PageEnd)
	case domain.LocationTime:
		return formatClock(loc.StartSeconds) + " - " + formatClock(loc.EndSeconds)
	default:
		return ""
	}
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

func citationForChunk(chunk domain.Chunk) domain.Citation {
	excerpt := chunk.Text
	if len(excerpt) > citationExcerptChars {
		excerpt = excerpt[:citationExcerptChars]
	}
	return domain.Citation{
		ChunkID:    chunk.ID,
		DocumentID: chunk.DocumentID,
		Location:   FormatLocation(chunk.Location),
		Excerpt:    excerpt,
	}
}
