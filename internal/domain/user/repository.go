package user

import "context"

// Repository describes user profile persistence needs from use cases.
// Create assigns ID and CreatedAt and returns the stored record. List
// returns every record in insertion order.
type Repository interface {
	Create(ctx context.Context, profile Profile) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
}
