// Package graphql decodes GraphQL operations into parser requests.
//
// Root fields address entities by name. In queries, a plural field such as
// trips reads many rows and accepts where, orderBy and having arguments; a
// singular field such as trip reads one row and its where argument is a
// unique lookup. Mutation fields are named create<Entity>, update<Entity>
// and delete<Entity>:
//
//	mutation ($n: Int!) {
//		updateTrip(where: {id: 7}, data: {passengers: {increment: $n}}) { id }
//	}
//
// Argument values are passed to the parser unchanged, so GraphQL clients
// typically pair the decoder with camelCase key resolution:
//
//	p, err := parse.New(reg, parse.WithFieldResolver(graphql.ResolveField))
//	descs, err := graphql.NewDecoder(reg).Parse(p, src, "", vars)
//
// Selection sets below the root fields are not interpreted.
package graphql
