package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

// Assemble builds the bounded evidence block handed to the generator. Ordering
// is category dependent: entity and date questions lead with the entity block,
// everything else leads with chunk excerpts. Chunks are included whole or not
// at all; the running character count never exceeds maxChars.
func Assemble(result *domain.RetrievalResult, category domain.QueryCategory, maxChars int) domain.AssembledContext {
	if maxChars <= 0 {
		maxChars = 6000
	}
	if result == nil {
		return domain.AssembledContext{}
	}

	entityBlock := renderEntityBlock(result.Entities)
	entitiesFirst := category == domain.CategoryEntity || category == domain.CategoryDate

	var b strings.Builder
	var included []domain.Chunk

	writeBlock := func(block string) {
		if block == "" {
			return
		}
		if b.Len()+len(block) > maxChars {
			return
		}
		b.WriteString(block)
	}

	writeChunks := func() {
		for _, chunk := range result.Chunks {
			section := renderChunkSection(len(included)+1, chunk)
			if b.Len()+len(section) > maxChars {
				continue
			}
			b.WriteString(section)
			included = append(included, chunk)
		}
	}

	if entitiesFirst {
		writeBlock(entityBlock)
		writeChunks()
	} else {
		writeChunks()
		writeBlock(entityBlock)
	}

	citations := make([]domain.Citation, 0, len(included))
	for _, chunk := range included {
		citations = append(citations, citationForChunk(chunk))
	}

	return domain.AssembledContext{
		Text:      b.String(),
		Included:  included,
		Citations: citations,
	}
}

func renderChunkSection(index int, chunk domain.Chunk) string {
	header := fmt.Sprintf("[%d] document=%s", index, chunk.DocumentID)
	if loc := FormatLocation(chunk.Location); loc != "" {
		header += " " + loc
	}
	return header + "\n" + chunk.Text + "\n\n"
}

func renderEntityBlock(mentions []domain.EntityMention) string {
	if len(mentions) == 0 {
		return ""
	}

	byType := make(map[string][]string)
	var types []string
	for _, mention := range mentions {
		key := strings.ToUpper(strings.TrimSpace(mention.Type))
		if key == "" {
			key = "OTHER"
		}
		if _, seen := byType[key]; !seen {
			types = append(types, key)
		}
		byType[key] = appendUnique(byType[key], mention.Name)
	}
	sort.Strings(types)

	var b strings.Builder
	b.WriteString("Entities:\n")
	for _, typ := range types {
		b.WriteString(typ + ": " + strings.Join(byType[typ], ", ") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}
