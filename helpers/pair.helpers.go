package helpers

// PairKey canonicalizes two user ids into a single conversation key,
// so both participants address the same partition and topic regardless
// of who initiates.
func PairKey(userA string, userB string) string {
	if userA < userB {
		return userA + ":" + userB
	}
	return userB + ":" + userA
}
