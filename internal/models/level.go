package models

// MaxLevel is the highest level a user can reach.
const MaxLevel = 70

// ExpForNextLevel returns the experience needed to advance from level to level+1.
// Level 1 needs 30, and every level after that needs 5 more than the previous one.
func ExpForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return 30 + 5*(level-1)
}

// LevelForExp converts accumulated experience into a level in [1, MaxLevel].
func LevelForExp(exp int) int {
	level := 1
	for level < MaxLevel {
		need := ExpForNextLevel(level)
		if exp < need {
			break
		}
		exp -= need
		level++
	}
	return level
}
