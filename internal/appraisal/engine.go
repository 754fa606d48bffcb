package appraisal

import (
	"go.uber.org/zap"
)

// Engine runs appraisals and reports degenerate outcomes to its logger.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine; a nil logger disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Appraise builds the table and metrics for params.
func (e *Engine) Appraise(params ProjectParameters) Appraisal {
	result := Appraise(params)
	m := result.Metrics

	if m.IRR.Status == IRRUncomputable {
		e.logger.Debug("irr has no real root for this cash flow",
			zap.String("op", "appraisal.Appraise"),
			zap.Int("years", params.LifespanYears),
		)
	}
	if m.PP.Status == PaybackNeverRecovers {
		e.logger.Debug("investment not recovered within lifespan",
			zap.String("op", "appraisal.Appraise"),
			zap.Bool("discounted", false),
		)
	}
	if m.DPP.Status == PaybackNeverRecovers {
		e.logger.Debug("investment not recovered within lifespan",
			zap.String("op", "appraisal.Appraise"),
			zap.Bool("discounted", true),
		)
	}

	e.logger.Debug("appraisal computed",
		zap.String("op", "appraisal.Appraise"),
		zap.Int("rows", len(result.Rows)),
		zap.Float64("npv", m.NPV),
		zap.Bool("depreciationAddBack", params.DepreciationAddBack),
	)
	return result
}
