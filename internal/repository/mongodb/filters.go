package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrcms/internal/models"
)

// postFilter builds the $match document for a post listing.
// A malformed category id matches nothing instead of everything.
func postFilter(q models.PostQuery) bson.D {
	filter := bson.D{}
	if q.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(q.Status)})
	}
	if q.CategoryID != "" {
		oid, err := primitive.ObjectIDFromHex(q.CategoryID)
		if err != nil {
			filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$exists", Value: false}}})
		} else {
			filter = append(filter, bson.E{Key: "category", Value: oid})
		}
	}
	if q.Tag != "" {
		filter = append(filter, bson.E{Key: "tags", Value: q.Tag})
	}
	if q.Search != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: q.Search}}})
	}
	return filter
}

func postSort(sort models.PostSort) bson.D {
	switch sort {
	case models.SortViews:
		return bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}
	case models.SortComments:
		return bson.D{{Key: "comments", Value: -1}, {Key: "createdAt", Value: -1}}
	case models.SortLikes:
		return bson.D{{Key: "likes", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "publishedAt", Value: -1}, {Key: "createdAt", Value: -1}}
	}
}

var categoryLookup = bson.D{{Key: "$lookup", Value: bson.D{
	{Key: "from", Value: categoriesCollection},
	{Key: "localField", Value: "category"},
	{Key: "foreignField", Value: "_id"},
	{Key: "as", Value: "categoryInfo"},
}}}

// postListPipeline pages through matching posts and joins their category.
func postListPipeline(q models.PostQuery) bson.A {
	pipeline := bson.A{
		bson.D{{Key: "$match", Value: postFilter(q)}},
		bson.D{{Key: "$sort", Value: postSort(q.Sort)}},
	}
	if q.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(q.Skip)}})
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(q.Limit)}})
	}
	pipeline = append(pipeline, categoryLookup)
	if q.ExcludeContent {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.D{{Key: "content", Value: 0}}}})
	}
	return pipeline
}

func commentFilter(q models.CommentQuery) bson.D {
	filter := bson.D{}
	if q.PostID != "" {
		oid, err := primitive.ObjectIDFromHex(q.PostID)
		if err != nil {
			filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$exists", Value: false}}})
		} else {
			filter = append(filter, bson.E{Key: "post", Value: oid})
		}
	}
	if q.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(q.Status)})
	}
	if q.TopLevelOnly {
		filter = append(filter, bson.E{Key: "parentComment", Value: nil})
	}
	return filter
}

func groupCountPipeline(field string) bson.A {
	return bson.A{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

var engagementPipeline = bson.A{
	bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "views", Value: bson.D{{Key: "$sum", Value: "$views"}}},
		{Key: "likes", Value: bson.D{{Key: "$sum", Value: "$likes"}}},
		{Key: "comments", Value: bson.D{{Key: "$sum", Value: "$comments"}}},
	}}},
}

var byCategoryPipeline = bson.A{
	bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$category"},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}},
	bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: categoriesCollection},
		{Key: "localField", Value: "_id"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "category"},
	}}},
	bson.D{{Key: "$project", Value: bson.D{
		{Key: "count", Value: 1},
		{Key: "name", Value: bson.D{{Key: "$ifNull", Value: bson.A{
			bson.D{{Key: "$arrayElemAt", Value: bson.A{"$category.name", 0}}}, "",
		}}}},
	}}},
	bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "name", Value: 1}}}},
}

func monthlyPipeline(since time.Time) bson.A {
	return bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$year", Value: "$createdAt"}}},
				{Key: "month", Value: bson.D{{Key: "$month", Value: "$createdAt"}}},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}
}

// categoriesWithCountsPipeline lists categories by name with the number of
// posts pointing at each one.
func categoriesWithCountsPipeline(activeOnly bool) bson.A {
	postMatch := bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$category", "$$cid"}}}}}
	pipeline := bson.A{}
	if activeOnly {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "isActive", Value: true}}}})
		postMatch = append(postMatch, bson.E{Key: "status", Value: string(models.PostPublished)})
	}

	return append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: postsCollection},
			{Key: "let", Value: bson.D{{Key: "cid", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: postMatch}},
				bson.D{{Key: "$count", Value: "n"}},
			}},
			{Key: "as", Value: "counts"},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "postCount", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$arrayElemAt", Value: bson.A{"$counts.n", 0}}}, 0,
			}}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "counts", Value: 0}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	)
}
