package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestPermissionsForAdmin(t *testing.T) {
	p := PermissionsFor(RoleAdmin)
	if !p.CanManageUsers || !p.CanManageQuestions || !p.CanManageExams ||
		!p.CanViewAnalytics || !p.CanDeleteContent || !p.CanModerateContent {
		t.Fatalf("admin must hold every permission, got %+v", p)
	}
}

func TestPermissionsForTeacher(t *testing.T) {
	p := PermissionsFor(RoleTeacher)
	if !p.CanManageQuestions || !p.CanManageExams || !p.CanViewAnalytics {
		t.Fatalf("teacher missing content permissions, got %+v", p)
	}
	if p.CanManageUsers || p.CanDeleteContent || p.CanModerateContent {
		t.Fatalf("teacher holds admin-only permissions, got %+v", p)
	}
}

func TestPermissionsForStudent(t *testing.T) {
	if p := PermissionsFor(RoleStudent); p != (RolePermissions{}) {
		t.Fatalf("student must hold no permissions, got %+v", p)
	}
}

func TestPermissionsForUnknownRole(t *testing.T) {
	// Total function: unknown roles degrade to the empty set, never panic.
	if p := PermissionsFor(Role("SUPERVISOR")); p != (RolePermissions{}) {
		t.Fatalf("unknown role must get the empty set, got %+v", p)
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleAdmin, PermissionManageUsers, true},
		{RoleAdmin, PermissionDeleteContent, true},
		{RoleTeacher, PermissionManageUsers, false},
		{RoleTeacher, PermissionManageQuestions, true},
		{RoleTeacher, PermissionManageExams, true},
		{RoleTeacher, PermissionViewAnalytics, true},
		{RoleTeacher, PermissionModerateContent, false},
		{RoleStudent, PermissionManageExams, false},
		{RoleStudent, PermissionViewAnalytics, false},
		{RoleAdmin, Permission("bogus:perm"), false},
	}

	for _, tc := range tests {
		if got := HasPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCanManageContent(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	if !CanManageContent(RoleAdmin, owner, other) {
		t.Fatal("admin must manage any content")
	}
	if !CanManageContent(RoleTeacher, owner, owner) {
		t.Fatal("teacher must manage own content")
	}
	if CanManageContent(RoleTeacher, owner, other) {
		t.Fatal("teacher must not manage others' content")
	}
	if CanManageContent(RoleStudent, owner, owner) {
		t.Fatal("student must not manage content, even own")
	}
}
