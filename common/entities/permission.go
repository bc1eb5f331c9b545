/*
 *  Licensed to Wikifeat under one or more contributor license agreements.
 *  See the LICENSE.txt file distributed with this work for additional information
 *  regarding copyright ownership.
 *
 *  Redistribution and use in source and binary forms, with or without
 *  modification, are permitted provided that the following conditions are met:
 *
 *  * Redistributions of source code must retain the above copyright notice,
 *  this list of conditions and the following disclaimer.
 *  * Redistributions in binary form must reproduce the above copyright
 *  notice, this list of conditions and the following disclaimer in the
 *  documentation and/or other materials provided with the distribution.
 *  * Neither the name of Wikifeat nor the names of its contributors may be used
 *  to endorse or promote products derived from this software without
 *  specific prior written permission.
 *
 *  THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
 *  AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
 *  IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
 *  ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT OWNER OR CONTRIBUTORS BE
 *  LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
 *  CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
 *  SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
 *  INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
 *  CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
 *  ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 *  POSSIBILITY OF SUCH DAMAGE.
 */

// Package entities holds the wiki's core data model: pages, revisions,
// namespaces, principals, groups, protections, blocks, follow-statuses,
// categories, links, talk threads, and logs.
package entities

// Permission is a permission string checked by the authorization engine.
type Permission string

// Site-wide and wiki permissions. Mirrors the full vocabulary used by the
// system this spec was distilled from, not just the subset the wiki core
// gates against.
const (
	PermEditSchema      Permission = "edit_schema"
	PermEditObjects     Permission = "edit_objects"
	PermEditUserGroups  Permission = "edit_user_groups"
	PermRevert          Permission = "revert"
	PermBlockUsers      Permission = "block_users"
	PermRenameUsers     Permission = "rename_users"
	PermMask            Permission = "mask"
	PermWikiEdit        Permission = "wiki_edit"
	PermWikiDelete      Permission = "wiki_delete"
	PermWikiRename      Permission = "wiki_rename"
	PermWikiRevert      Permission = "wiki_revert"
	PermWikiProtect     Permission = "wiki_protect"
	PermWikiMask        Permission = "wiki_mask"
	PermWikiEditFilters Permission = "wiki_edit_filters"
	PermWikiEditUserPages Permission = "wiki_edit_user_pages"
	PermWikiEditInterface Permission = "wiki_edit_interface"
)

// AllPermissions lists every permission recognized by the system.
var AllPermissions = []Permission{
	PermEditSchema, PermEditObjects, PermEditUserGroups, PermRevert,
	PermBlockUsers, PermRenameUsers, PermMask,
	PermWikiEdit, PermWikiDelete, PermWikiRename, PermWikiRevert,
	PermWikiProtect, PermWikiMask, PermWikiEditFilters,
	PermWikiEditUserPages, PermWikiEditInterface,
}

// Group labels. GroupAll is implicitly held by every principal, including
// anonymous ones.
const (
	GroupSuperuser          = "superuser"
	GroupAdministrator      = "administrator"
	GroupWikiAdministrator  = "wiki_administrator"
	GroupPatroller          = "patroller"
	GroupWikiPatroller      = "wiki_patroller"
	GroupWikiAutopatrolled  = "wiki_autopatrolled"
	GroupAutopatrolled      = "autopatrolled"
	GroupUser               = "user"
	GroupAll                = "all"
)

// UserGroup is a named bundle of permissions a principal may belong to.
type UserGroup struct {
	Label             string
	Permissions       map[Permission]bool
	AssignableByUsers bool
}

// HasPermission reports whether this group grants perm.
func (g UserGroup) HasPermission(perm Permission) bool {
	return g.Permissions[perm]
}

// NewUserGroup builds a group from a label and a permission list.
func NewUserGroup(label string, assignableByUsers bool, perms ...Permission) UserGroup {
	m := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return UserGroup{Label: label, Permissions: m, AssignableByUsers: assignableByUsers}
}
