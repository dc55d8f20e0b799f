package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FilterDocument renders the parsed filters as a Mongo filter document.
// Multiple operators on the same field merge into one operator document.
func (p Params) FilterDocument() bson.M {
	filter := bson.M{}

	for _, f := range p.Filters {
		if f.Op == OpEq {
			filter[f.Field] = f.Value
			continue
		}

		ops, ok := filter[f.Field].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[f.Field] = ops
		}
		ops["$"+string(f.Op)] = f.Value
	}

	return filter
}

// FindOptions renders projection, sort and the pagination window.
func (p Params) FindOptions() *options.FindOptions {
	opts := options.Find().
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit)).
		SetSort(p.SortDocument())

	if proj := p.ProjectDocument(); proj != nil {
		opts.SetProjection(proj)
	}

	return opts
}

// ProjectDocument renders the select list as an inclusion projection, or nil
// when no fields were selected. The id field rides along by default.
func (p Params) ProjectDocument() bson.D {
	if len(p.Select) == 0 {
		return nil
	}

	proj := bson.D{}
	for _, f := range p.Select {
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return proj
}

// SortDocument keeps key order, so compound sorts apply left to right.
func (p Params) SortDocument() bson.D {
	sort := bson.D{}

	for _, k := range p.Sort {
		dir := 1
		if k.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: k.Field, Value: dir})
	}
	return sort
}
