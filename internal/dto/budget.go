package dto

// BudgetSetupRequest is the budget-setup form: monthly numbers plus the
// catalog ids of the subscriptions the user pays for.
type BudgetSetupRequest struct {
	MonthlyIncome        string   `json:"monthlyIncome" validate:"required,nonneg_amount"`
	MonthlyBudget        string   `json:"monthlyBudget" validate:"required,nonneg_amount"`
	SavingsTargetPercent int      `json:"savingsTargetPercent" validate:"min=0,max=100"`
	SubscriptionIDs      []string `json:"subscriptionIds" validate:"max=20,dive,required,max=50"`
}

// OnboardingStep is one item of the intro checklist
type OnboardingStep struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// OnboardingStatus summarises how far the user is through the intro flow
type OnboardingStatus struct {
	Onboarded         bool             `json:"onboarded"`
	HasBudgetProfile  bool             `json:"hasBudgetProfile"`
	TransactionCount  int64            `json:"transactionCount"`
	GoalCount         int              `json:"goalCount"`
	SubscriptionCount int              `json:"subscriptionCount"`
	Steps             []OnboardingStep `json:"steps"`
}

// SeedDemoResponse reports the demo data that was generated
type SeedDemoResponse struct {
	Created int `json:"created"`
}
