// Package bag is a layered, type-indexed context store.
//
// Independent producers write typed values into named layers; consumers read
// the effective value of a type from a Bag, which walks its mutable current
// layer and then its frozen history from newest to oldest. How contributions
// combine is decided once per type by the marker its Storer method returns:
//
//	type Region string
//	func (Region) Storer() bag.Replace { return bag.Replace{} }
//
//	type Tag string
//	func (Tag) Storer() bag.Append { return bag.Append{} }
//
//	b := bag.Base()
//	bag.StorePut(b.CurrentLayer(), Region("us-east-1"))
//	bag.StoreAppend(b.CurrentLayer(), Tag("x"))
//	region, ok := bag.Load[Region](b)
//	tags := slices.Collect(bag.LoadAll[Tag](b))
//
// Frozen layers are immutable and may be shared by many bags without copying.
// A frozen layer held by a single owner can be reclaimed for in place
// mutation with TryReclaim; otherwise it must be cloned.
package bag
