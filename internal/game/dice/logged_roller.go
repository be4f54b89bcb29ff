package dice

import "go.uber.org/zap"

// Roller wraps a Source and logs every draw at debug level. A Roller is itself
// a Source, so it can be handed to the engine wherever a Source is expected.
type Roller struct {
	src    Source
	logger *zap.Logger
	draws  int
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the bound and the result.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.draws++
	r.logger.Debug("random draw",
		zap.Int("seq", r.draws),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Draws returns the number of values drawn so far.
func (r *Roller) Draws() int { return r.draws }

// Roll evaluates expr through the logged source and logs the total.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}
