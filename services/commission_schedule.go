package services

// CommissionSchedule maps upline depth (1-based, 1 = direct referrer) to
// the fraction of the commission pool paid at that depth. Depths with no
// entry receive nothing.
type CommissionSchedule map[int]float64

// DefaultCommissionSchedule returns the production rate table:
// 10%/8%/6%/5%/4% for levels 1-5, then 3% (6-10), 1% (11-30),
// 0.5% (31-60) and 0.2% (61-100).
func DefaultCommissionSchedule() CommissionSchedule {
	s := CommissionSchedule{
		1: 0.10,
		2: 0.08,
		3: 0.06,
		4: 0.05,
		5: 0.04,
	}
	for level := 6; level <= 10; level++ {
		s[level] = 0.03
	}
	for level := 11; level <= 30; level++ {
		s[level] = 0.01
	}
	for level := 31; level <= 60; level++ {
		s[level] = 0.005
	}
	for level := 61; level <= 100; level++ {
		s[level] = 0.002
	}
	return s
}

// Rate returns the commission rate for a level, or 0 if none is configured.
func (s CommissionSchedule) Rate(level int) float64 {
	return s[level]
}

// CommissionConfig carries the tunable parameters of the distribution
// engine. Injected so tests can pin their own values.
type CommissionConfig struct {
	// CompanyMarginShare is the fraction of order margin the platform
	// retains before cashback and commissions are funded.
	CompanyMarginShare float64
	// MinPayout is the smallest commission worth paying. Smaller payouts
	// are dropped, not accumulated.
	MinPayout float64
	// BalanceThreshold triggers a one-time notification when a wallet
	// balance crosses it from below. Zero disables the check.
	BalanceThreshold float64
	Schedule         CommissionSchedule
}

// DefaultCommissionConfig returns the production parameters.
func DefaultCommissionConfig() CommissionConfig {
	return CommissionConfig{
		CompanyMarginShare: 0.50,
		MinPayout:          0.10,
		BalanceThreshold:   10000,
		Schedule:           DefaultCommissionSchedule(),
	}
}
