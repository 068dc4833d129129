// Package curriculum contains the course registry: completion state, the
// state cycle, grouping for display and final-exam eligibility.
//
// Allowed here:
// - course data types, state transitions, eligibility and ordering rules
//
// Not allowed here:
// - catalog parsing, storage backends, or anything that draws to the terminal
package curriculum
