package models

// EntryType distinguishes money coming in from money going out.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// Category classifies an entry for summaries.
type Category string

const (
	CategorySalary                Category = "salary"
	CategoryRent                  Category = "rent"
	CategoryGroceries             Category = "groceries"
	CategoryVehicles              Category = "vehicles"
	CategoryTransport             Category = "transport"
	CategoryClothing              Category = "clothing"
	CategoryTrips                 Category = "trips"
	CategoryHome                  Category = "home"
	CategoryInvestment            Category = "investment"
	CategoryFinancing             Category = "financing"
	CategoryHealth                Category = "health"
	CategoryEntertainment         Category = "entertainment"
	CategorySubscriptions         Category = "subscriptions"
	CategoryRestaurants           Category = "restaurants"
	CategoryBills                 Category = "bills"
	CategoryExtraordinaryExpenses Category = "extraordinary_expenses"
	CategoryExtraordinaryIncomes  Category = "extraordinary_incomes"
	CategoryAcademic              Category = "academic"
	CategoryPresents              Category = "presents"
	CategoryOther                 Category = "other"
)

// Role is a membership role inside a household or account.
type Role string

const (
	RoleReader Role = "reader"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

var roleWeight = map[Role]int{
	RoleReader: 1,
	RoleMember: 2,
	RoleAdmin:  3,
}

// Weight returns the ordering weight of the role; unknown roles weigh zero.
func (r Role) Weight() int {
	return roleWeight[r]
}
