package models

// BoardColumn is a live column together with its live cards, both in
// position order.
type BoardColumn struct {
	Column
	Cards []Card `json:"cards"`
}

// CardDetails is a card with everything attached to it.
type CardDetails struct {
	Card
	Labels       []Label              `json:"labels"`
	Assignees    []User               `json:"assignees"`
	Comments     []Comment            `json:"comments"`
	Activity     []Activity           `json:"activity"`
	Checklists   []ChecklistWithItems `json:"checklists"`
	CustomFields []CardCustomField    `json:"custom_fields"`
	Subtasks     []Card               `json:"subtasks"`
}
