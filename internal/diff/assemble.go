package diff

import (
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/score"
)

// Assemble packages a score and ordered change records into a report.
// The score keeps full precision; rounding happens on display.
func Assemble(res score.Result, changes []model.ChangeRecord, baseNodes, candidateNodes int) *model.DiffReport {
	if changes == nil {
		changes = []model.ChangeRecord{}
	}
	return &model.DiffReport{
		Score:          res.Score,
		RawScore:       res.Raw,
		Normalizer:     res.Normalizer,
		BaseNodes:      baseNodes,
		CandidateNodes: candidateNodes,
		Changes:        changes,
	}
}
