package checkout

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrIllegalTransition    = errors.New("illegal transition of checkout state")
)
