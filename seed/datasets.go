package seed

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Collection names the resolver can fall back to. Action sub-paths have no
// synthetic equivalent and never reach this package.
const (
	CollectionDocuments  = "documents"
	CollectionDepartment = "departments"
	CollectionUsers      = "users"
	CollectionCategories = "document-categories"
	CollectionClients    = "clients"
)

func seedCollections() map[string][]map[string]any {
	return map[string][]map[string]any{
		CollectionDocuments:  seedDocuments(),
		CollectionDepartment: seedDepartments(),
		CollectionUsers:      seedUsers(),
		CollectionCategories: seedCategories(),
		CollectionClients:    seedClients(),
	}
}

func seedDocuments() []map[string]any {
	return []map[string]any{
		{"id": "D1", "title": "Q3 Financial Report", "category": "C1", "department": "finance", "status": "approved", "owner": "U2", "createdAt": "2026-07-02T09:15:00Z"},
		{"id": "D2", "title": "Employee Handbook v4", "category": "C2", "department": "hr", "status": "draft", "owner": "U3", "createdAt": "2026-07-18T14:40:00Z"},
		{"id": "D3", "title": "Vendor Master Agreement", "category": "C3", "department": "legal", "status": "pending", "owner": "U2", "createdAt": "2026-08-01T11:05:00Z"},
		{"id": "D4", "title": "Network Security Policy", "category": "C2", "department": "it", "status": "approved", "owner": "U1", "createdAt": "2026-08-12T08:30:00Z"},
	}
}

func seedDepartments() []map[string]any {
	return []map[string]any{
		{"id": "DEP1", "name": "Finance", "code": "finance", "headCount": 14},
		{"id": "DEP2", "name": "Human Resources", "code": "hr", "headCount": 6},
		{"id": "DEP3", "name": "Legal", "code": "legal", "headCount": 4},
		{"id": "DEP4", "name": "Information Technology", "code": "it", "headCount": 11},
	}
}

func seedUsers() []map[string]any {
	return []map[string]any{
		{"id": "U1", "name": "Admin", "email": "admin@x.com", "role": "admin", "department": "it"},
		{"id": "U2", "name": "Jane Rivers", "email": "jane.rivers@x.com", "role": "user", "department": "finance"},
		{"id": "U3", "name": "Tom Okafor", "email": "tom.okafor@x.com", "role": "user", "department": "hr"},
	}
}

func seedCategories() []map[string]any {
	return []map[string]any{
		{"id": "C1", "name": "Reports", "retentionYears": 7},
		{"id": "C2", "name": "Policies", "retentionYears": 5},
		{"id": "C3", "name": "Contracts", "retentionYears": 10},
	}
}

func seedClients() []map[string]any {
	return []map[string]any{
		{"id": "CL1", "name": "Northwind Trading", "contact": "ops@northwind.example", "tier": "gold"},
		{"id": "CL2", "name": "Aurora Logistics", "contact": "hello@aurora.example", "tier": "silver"},
	}
}

// Demo credentials so the console stays usable when the backend and the
// backing store are both down. Hashed at startup; plaintext never leaves
// this function.
func seedAccounts() map[string]seedAccount {
	accounts := make(map[string]seedAccount)
	for _, entry := range []struct {
		account Account
		secret  string
	}{
		{Account{ID: "U1", Name: "Admin", Email: "admin@x.com", Role: "admin", Department: "it"}, "admin123"},
		{Account{ID: "U2", Name: "Jane Rivers", Email: "jane.rivers@x.com", Role: "user", Department: "finance"}, "user123"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(entry.secret), bcrypt.DefaultCost)
		if err != nil {
			continue
		}
		accounts[entry.account.Email] = seedAccount{account: entry.account, passwordHash: hash}
	}
	return accounts
}

func nextSyntheticID(collection string, count int) string {
	return fmt.Sprintf("%s-local-%d", collection, count+1)
}
