// internal/panelstub/resources.go
package panelstub

type option struct {
	Value string
	Label string
}

type fieldSpec struct {
	ID       string
	Label    string
	Type     string
	Options  []option
	Required bool
	// Listed marks the fields shown as list columns.
	Listed bool
	// Create and Edit select the forms the field appears on.
	Create, Edit bool
	// Secret fields are never echoed back into a form.
	Secret bool
	// Confirms names the field this one must equal.
	Confirms string
}

type resourceSpec struct {
	Key    string
	Title  string
	Search []string
	Fields []fieldSpec
}

func (r *resourceSpec) formFields(edit bool) []fieldSpec {
	out := make([]fieldSpec, 0, len(r.Fields))
	for _, f := range r.Fields {
		if (edit && f.Edit) || (!edit && f.Create) {
			out = append(out, f)
		}
	}
	return out
}

func text(id, label string) fieldSpec {
	return fieldSpec{ID: id, Label: label, Type: "text", Create: true, Edit: true}
}

func required(f fieldSpec) fieldSpec {
	f.Required = true
	return f
}

func listed(f fieldSpec) fieldSpec {
	f.Listed = true
	return f
}

func password(id, label, confirms string, create bool) fieldSpec {
	return fieldSpec{
		ID: id, Label: label, Type: "password",
		Create: create, Edit: !create, Required: create && confirms == "",
		Secret: true, Confirms: confirms,
	}
}

func defaultResources() []*resourceSpec {
	email := listed(required(fieldSpec{ID: "email", Label: "Email", Type: "email", Create: true, Edit: true}))
	return []*resourceSpec{
		{
			Key:    "admin_users",
			Title:  "Admin Users",
			Search: []string{"q[id]", "q[last_name]", "q[first_name]", "q[login_enable]"},
			Fields: []fieldSpec{
				listed(required(text("last_name", "Last Name"))),
				listed(required(text("first_name", "First Name"))),
				email,
				{
					ID: "login_enable", Label: "Login", Type: "select", Required: true,
					Options: []option{{"1", "Enabled"}, {"0", "Disabled"}},
					Create:  true, Edit: true, Listed: true,
				},
				password("password", "Password", "", true),
				password("password_confirmation", "Password (confirm)", "password", true),
			},
		},
		{
			Key:    "members",
			Title:  "Members",
			Search: []string{"q[id]", "q[last_name]", "q[first_name]", "q[email]", "q[stripe_id]", "q[enable_direct_message]"},
			Fields: []fieldSpec{
				listed(required(text("last_name", "Last Name"))),
				listed(required(text("first_name", "First Name"))),
				email,
				text("last_name_kana", "Last Name (Kana)"),
				text("first_name_kana", "First Name (Kana)"),
				text("phone_number", "Phone"),
				{
					ID: "enable_direct_message", Label: "Direct Message", Type: "select",
					Options: []option{{"1", "Receive"}, {"0", "Reject"}},
					Create:  true, Edit: true, Listed: true,
				},
				text("zip_code", "Zip Code"),
				text("address1", "Address 1"),
				text("address2", "Address 2"),
				text("address3", "Address 3"),
				password("password", "Password", "", true),
				password("password_confirmation", "Password (confirm)", "password", true),
				password("password_for_edit", "New Password", "", false),
				password("password_for_edit_confirmation", "New Password (confirm)", "password_for_edit", false),
			},
		},
	}
}
