package model

// demoMembers is the sample organization shown when no root identity is
// configured or when loading from the directory fails.
var demoMembers = []Member{
	{ID: "1", DisplayName: "John Smith", JobTitle: "Chief Executive Officer", Department: "Executive", Initials: "JS"},
	{ID: "2", DisplayName: "Sarah Johnson", JobTitle: "Chief Technology Officer", Department: "Technology", Initials: "SJ", Parent: "1"},
	{ID: "3", DisplayName: "Mike Williams", JobTitle: "Chief Financial Officer", Department: "Finance", Initials: "MW", Parent: "1"},
	{ID: "4", DisplayName: "Emily Brown", JobTitle: "Chief Operating Officer", Department: "Operations", Initials: "EB", Parent: "1"},
	{ID: "5", DisplayName: "David Lee", JobTitle: "VP of Engineering", Department: "Engineering", Initials: "DL", Parent: "2"},
	{ID: "6", DisplayName: "Lisa Chen", JobTitle: "VP of Product", Department: "Product", Initials: "LC", Parent: "2"},
	{ID: "7", DisplayName: "Tom Davis", JobTitle: "VP of Finance", Department: "Finance", Initials: "TD", Parent: "3"},
	{ID: "8", DisplayName: "Anna Wilson", JobTitle: "VP of Operations", Department: "Operations", Initials: "AW", Parent: "4"},
	{ID: "9", DisplayName: "James Taylor", JobTitle: "Senior Software Engineer", Department: "Engineering", Initials: "JT", Parent: "5"},
	{ID: "10", DisplayName: "Maria Garcia", JobTitle: "Product Manager", Department: "Product", Initials: "MG", Parent: "6"},
}

// DemoMembers returns a fresh copy of the demo dataset. Callers may mutate
// the result freely.
func DemoMembers() []Member {
	out := make([]Member, len(demoMembers))
	copy(out, demoMembers)
	return out
}

// IsDemo reports whether members is exactly the demo dataset (same ids in the
// same order with the same parents).
func IsDemo(members []Member) bool {
	if len(members) != len(demoMembers) {
		return false
	}
	for i := range members {
		if members[i].ID != demoMembers[i].ID || members[i].Parent != demoMembers[i].Parent {
			return false
		}
	}
	return true
}
