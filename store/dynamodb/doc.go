// Package dynamodb implements store.Store on Amazon DynamoDB.
//
// Catalog entries live in one table partition ordered by a sort key
// that encodes (updatedAt, id), so a Query with ScanIndexForward=false
// walks the catalog in strictly descending update order. The opaque
// pagination cursor round-trips the last returned item's key.
//
// Table schema:
//   - Partition key: pk (string) — a fixed catalog partition
//   - Sort key: sk (string) — zero-padded UpdatedAt nanos + "#" + id
//   - Global secondary index "id-index" on id, for point lookups
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name placewalk-catalog \
//	  --attribute-definitions AttributeName=pk,AttributeType=S AttributeName=sk,AttributeType=S AttributeName=id,AttributeType=S \
//	  --key-schema AttributeName=pk,KeyType=HASH AttributeName=sk,KeyType=RANGE \
//	  --global-secondary-indexes 'IndexName=id-index,KeySchema=[{AttributeName=id,KeyType=HASH}],Projection={ProjectionType=ALL}' \
//	  --billing-mode PAY_PER_REQUEST
package dynamodb
