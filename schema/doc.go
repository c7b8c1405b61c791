// Package schema provides the table-level declaration of an entity.
//
// An entity type declares its table by implementing Entity on its value
// receiver:
//
//	type User struct {
//	    ID          int64
//	    Name        string
//	    Birthday    time.Time
//	    Address     string
//	    CreatedTime time.Time
//	    UpdatedTime time.Time
//	}
//
//	func (User) Table() *schema.TableBuilder {
//	    return schema.Table("user_test").
//	        LogicDelete().
//	        Fields(
//	            field.Column("ID"),
//	            field.Column("Name"),
//	            field.Column("Birthday"),
//	            field.Column("Address").NoQuery(),
//	            field.Column("CreatedTime"),
//	            field.Column("UpdatedTime"),
//	        )
//	}
//
// Types that cannot carry methods are declared with metadata.Register.
//
// # Defaults
//
//	id column          id
//	feature column     feature
//	created-at column  created_time
//	updated-at column  updated_time
//	logic delete       off
//
// The created-at column is left untouched on upsert conflicts unless
// UpdateCreatedAtOnConflict is set.
package schema
