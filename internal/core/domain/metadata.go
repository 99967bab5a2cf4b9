package domain

const (
	CollectionUsers   = "users"
	CollectionCourses = "courses"
	CollectionSchools = "schools"
	CollectionChats   = "chats"
)

// MetadataTarget names one denormalized id array: the collection holding it,
// the array field, and, for users, the roles whose documents carry the field.
type MetadataTarget struct {
	Name       string
	Collection string
	Field      string
	Roles      []Role
}

// AppliesTo reports whether documents of role carry the target field.
func (t MetadataTarget) AppliesTo(role Role) bool {
	if len(t.Roles) == 0 {
		return true
	}
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	StudentCourses = MetadataTarget{
		Name: "student.courses", Collection: CollectionUsers, Field: "meta.courses",
		Roles: []Role{RoleStudent},
	}
	InstructorCourses = MetadataTarget{
		Name: "instructor.courses", Collection: CollectionUsers, Field: "meta.courses",
		Roles: []Role{RoleInstructor},
	}
	UserChats = MetadataTarget{
		Name: "user.chats", Collection: CollectionUsers, Field: "meta.chats",
		Roles: UserRoles,
	}

	CourseStudents    = MetadataTarget{Name: "course.students", Collection: CollectionCourses, Field: "meta.students"}
	CourseInstructors = MetadataTarget{Name: "course.instructors", Collection: CollectionCourses, Field: "meta.instructors"}

	ChatUsers = MetadataTarget{Name: "chat.users", Collection: CollectionChats, Field: "meta.users"}

	SchoolStudents        = MetadataTarget{Name: "school.students", Collection: CollectionSchools, Field: "meta.students"}
	SchoolOfficialMembers = MetadataTarget{Name: "school.schoolOfficials", Collection: CollectionSchools, Field: "meta.schoolOfficials"}
	SchoolCourses         = MetadataTarget{Name: "school.courses", Collection: CollectionSchools, Field: "meta.courses"}
)

// Relation is a bidirectional edge kept as two id arrays, one on each side.
// Left documents hold right ids and vice versa.
type Relation struct {
	Name  string
	Left  MetadataTarget
	Right MetadataTarget
}

var (
	// Enrollment: student.meta.courses <-> course.meta.students.
	Enrollment = Relation{Name: "enrollment", Left: StudentCourses, Right: CourseStudents}
	// Teaching: instructor.meta.courses <-> course.meta.instructors.
	Teaching = Relation{Name: "teaching", Left: InstructorCourses, Right: CourseInstructors}
)
