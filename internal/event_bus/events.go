package event_bus

const CustomBudgetDeleting EventType = "budget.custom.deleting"

// CustomBudgetRemoval is published before a custom or mini budget is removed, so that
// the records it owns can be removed first. A failing handler aborts the removal.
type CustomBudgetRemoval struct {
	BudgetId int
	UserId   int
	Name     string
}
