//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

//go:build windows

package accountdb

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	netAPI32 = windows.NewLazySystemDLL("netapi32.dll")

	// https://learn.microsoft.com/en-us/windows/win32/api/lmaccess/nf-lmaccess-netuserenum
	procNetUserEnum = netAPI32.NewProc("NetUserEnum")
	// https://learn.microsoft.com/en-us/windows/win32/api/lmaccess/nf-lmaccess-netlocalgroupenum
	procNetLocalGroupEnum = netAPI32.NewProc("NetLocalGroupEnum")
	// https://learn.microsoft.com/en-us/windows/win32/api/lmaccess/nf-lmaccess-netlocalgroupgetmembers
	procNetLocalGroupGetMembers = netAPI32.NewProc("NetLocalGroupGetMembers")

	// The following is stubbed out for testing.
	syscallN         = syscall.SyscallN
	netAPIBufferFree = windows.NetApiBufferFree
)

const (
	// nerrSuccess is the NET_API_STATUS success code.
	nerrSuccess = 0
	// errorMoreData is returned when more entries are available, the call must
	// be repeated with the returned resume handle.
	errorMoreData = 234
	// maxPreferredLength asks the api to allocate as much memory as needed.
	maxPreferredLength = 0xFFFFFFFF
	// filterNormalAccount restricts NetUserEnum to regular user accounts.
	filterNormalAccount = 0x0002
)

// UserInfo0 is Microsoft's representation of a user name for syscalls.
// https://learn.microsoft.com/en-us/windows/win32/api/lmaccess/ns-lmaccess-user_info_0
type UserInfo0 struct {
	Name *uint16
}

// LocalGroupInfo0 is Microsoft's representation of a group for syscalls.
// https://learn.microsoft.com/en-us/windows/win32/api/lmaccess/ns-lmaccess-localgroup_info_0
type LocalGroupInfo0 struct {
	Name *uint16
}

// LocalGroupMembersInfo3 is Microsoft's representation of a group member
// (account and domain names) for syscalls.
// https://learn.microsoft.com/en-us/windows/win32/api/lmaccess/ns-lmaccess-localgroup_members_info_3
type LocalGroupMembersInfo3 struct {
	DomainAndName *uint16
}

// netEnum repeats a netapi32 enumeration call until all pages were read. call
// must keep its own resume handle, decode converts a page into names.
func netEnum(api string, call func(buf **byte, read, total *uint32) uintptr, decode func(buf *byte, n uint32) []string) ([]string, error) {
	var names []string
	for {
		var buf *byte
		var read, total uint32

		ret := call(&buf, &read, &total)
		if ret != nerrSuccess && ret != errorMoreData {
			return nil, fmt.Errorf("nonzero return code(%v) from %s: %w", ret, api, syscall.Errno(ret))
		}

		if buf != nil {
			names = append(names, decode(buf, read)...)
			if err := netAPIBufferFree(buf); err != nil {
				return nil, fmt.Errorf("failed to free %s buffer: %w", api, err)
			}
		}

		if ret != errorMoreData {
			return names, nil
		}
	}
}

// defaultNetUserEnum lists the names of the local machine's user accounts.
func defaultNetUserEnum() ([]string, error) {
	var resume uint32
	call := func(buf **byte, read, total *uint32) uintptr {
		ret, _, _ := syscallN(
			procNetUserEnum.Addr(),
			0,
			0,
			filterNormalAccount,
			uintptr(unsafe.Pointer(buf)),
			maxPreferredLength,
			uintptr(unsafe.Pointer(read)),
			uintptr(unsafe.Pointer(total)),
			uintptr(unsafe.Pointer(&resume)),
		)
		return ret
	}

	decode := func(buf *byte, n uint32) []string {
		var res []string
		for _, info := range unsafe.Slice((*UserInfo0)(unsafe.Pointer(buf)), n) {
			res = append(res, windows.UTF16PtrToString(info.Name))
		}
		return res
	}

	return netEnum("NetUserEnum", call, decode)
}

// defaultNetLocalGroupEnum lists the names of the local machine's groups.
func defaultNetLocalGroupEnum() ([]string, error) {
	var resume uintptr
	call := func(buf **byte, read, total *uint32) uintptr {
		ret, _, _ := syscallN(
			procNetLocalGroupEnum.Addr(),
			0,
			0,
			uintptr(unsafe.Pointer(buf)),
			maxPreferredLength,
			uintptr(unsafe.Pointer(read)),
			uintptr(unsafe.Pointer(total)),
			uintptr(unsafe.Pointer(&resume)),
		)
		return ret
	}

	decode := func(buf *byte, n uint32) []string {
		var res []string
		for _, info := range unsafe.Slice((*LocalGroupInfo0)(unsafe.Pointer(buf)), n) {
			res = append(res, windows.UTF16PtrToString(info.Name))
		}
		return res
	}

	return netEnum("NetLocalGroupEnum", call, decode)
}

// defaultNetLocalGroupGetMembers lists the members of a local group as
// DOMAIN\name strings.
func defaultNetLocalGroupGetMembers(group string) ([]string, error) {
	gPtr, err := syscall.UTF16PtrFromString(group)
	if err != nil {
		return nil, fmt.Errorf("error encoding group name to UTF16: %w", err)
	}

	var resume uintptr
	call := func(buf **byte, read, total *uint32) uintptr {
		ret, _, _ := syscallN(
			procNetLocalGroupGetMembers.Addr(),
			0,
			uintptr(unsafe.Pointer(gPtr)),
			3,
			uintptr(unsafe.Pointer(buf)),
			maxPreferredLength,
			uintptr(unsafe.Pointer(read)),
			uintptr(unsafe.Pointer(total)),
			uintptr(unsafe.Pointer(&resume)),
		)
		return ret
	}

	decode := func(buf *byte, n uint32) []string {
		var res []string
		for _, info := range unsafe.Slice((*LocalGroupMembersInfo3)(unsafe.Pointer(buf)), n) {
			res = append(res, windows.UTF16PtrToString(info.DomainAndName))
		}
		return res
	}

	return netEnum("NetLocalGroupGetMembers", call, decode)
}
