package mongodb

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/restock/svc/catalog"
)

// productFilter translates a catalog filter into a query document. Attribute
// values are matched through $objectToArray since their keys are free-form.
func productFilter(f catalog.Filter) bson.M {
	and := bson.A{}

	if pattern := f.TextPattern(); pattern != "" {
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"name": bson.M{"$regex": pattern}},
			bson.M{"description": bson.M{"$regex": pattern}},
			bson.M{"$expr": bson.M{"$anyElementTrue": bson.A{
				bson.M{"$map": bson.M{
					"input": bson.M{"$objectToArray": bson.M{"$ifNull": bson.A{"$attributes", bson.M{}}}},
					"as":    "attr",
					"in":    bson.M{"$regexMatch": bson.M{"input": "$$attr.v", "regex": pattern}},
				}},
			}}},
		}})
	}

	price := bson.M{}
	if f.PriceMin != nil {
		price["$gte"] = *f.PriceMin
	}
	if f.PriceMax != nil {
		price["$lte"] = *f.PriceMax
	}
	if len(price) > 0 {
		and = append(and, bson.M{"price": price})
	}

	switch f.Stock {
	case catalog.StockZero:
		and = append(and, bson.M{"stock": 0})
	case catalog.StockPositive:
		and = append(and, bson.M{"stock": bson.M{"$gt": 0}})
	}

	if len(and) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": and}
}
