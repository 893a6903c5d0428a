package promo

// Rejection reasons. They end up on receipts and in cashier warnings, so keep
// them stable.
const (
	ReasonNotFound             = "promo not found"
	ReasonNotSelectable        = "promo type not selectable"
	ReasonMissingProduct       = "missing or insufficient product"
	ReasonNoCompleteSets       = "no complete sets available"
	ReasonBundleEmpty          = "bundle has no products"
	ReasonInvalidRequiredQty   = "invalid required quantity"
	ReasonNoBuyProduct         = "promotion has no buy product"
	ReasonNoGetProduct         = "promotion has no get product"
	ReasonInvalidMinQuantity   = "invalid minimum quantity per set"
	ReasonBuyProductNotInCart  = "buy product not in cart"
	ReasonInsufficientQuantity = "insufficient quantity"
	ReasonMinimumNotMet        = "minimum quantity per set not met"
	ReasonNoEligibleProducts   = "no eligible products selected"
	ReasonInvalidDiscount      = "invalid discount value"
)
