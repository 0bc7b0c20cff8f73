package wgapi

import "context"

type iterState int

const (
	stateHasCurrentPage iterState = iota
	stateFetchingNextPage
	stateExhausted
)

// Iterator walks the items of a Result. Object payloads yield their keys,
// array payloads their elements.
//
//	it := result.Iter()
//	for it.Next(ctx) {
//		item := it.Value()
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator struct {
	r        *Result
	paginate bool

	state  iterState
	loaded bool
	items  []any
	pos    int
	value  any
	err    error
}

// Next advances to the next item, fetching further pages as needed. It
// returns false when iteration ends or fails; check Err afterwards.
func (it *Iterator) Next(ctx context.Context) bool {
	for {
		switch it.state {
		case stateExhausted:
			return false

		case stateHasCurrentPage:
			if !it.loaded {
				items, err := it.r.elements(ctx)
				if err != nil {
					return it.fail(err)
				}
				it.items, it.loaded = items, true
			}
			if it.pos < len(it.items) {
				it.value = it.items[it.pos]
				it.pos++
				return true
			}
			if !it.paginate {
				it.state = stateExhausted
				return false
			}
			it.state = stateFetchingNextPage

		case stateFetchingNextPage:
			more, err := it.r.hasMorePages(ctx)
			if err != nil {
				return it.fail(err)
			}
			if !more {
				it.state = stateExhausted
				return false
			}
			items, err := it.r.nextPage(ctx)
			if err != nil {
				return it.fail(err)
			}
			if len(items) == 0 {
				it.state = stateExhausted
				return false
			}
			it.items, it.pos = items, 0
			it.state = stateHasCurrentPage
		}
	}
}

// Value returns the current item
func (it *Iterator) Value() any {
	return it.value
}

// Err returns the error that stopped iteration, if any
func (it *Iterator) Err() error {
	return it.err
}

func (it *Iterator) fail(err error) bool {
	it.err = err
	it.value = nil
	it.state = stateExhausted
	return false
}
