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

package config

import (
	"context"
	"log"
	"reflect"
	"strconv"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// etcdClient is the shared etcd v3 client, set up by InitEtcd.
var etcdClient *clientv3.Client

// InitEtcd dials etcd at the given endpoints. Mirrors the teacher's
// InitEtcd, updated from the v2 "github.com/coreos/etcd/client" KeysAPI
// to the v3 clientv3.Client the rest of the ecosystem has moved to.
func InitEtcd(endpoints []string) error {
	log.Printf("initializing etcd config connection to %v", endpoints)
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return err
	}
	etcdClient = c
	return nil
}

// FetchWikiConfig loads every WikiConfig field present under
// WikiConfigLocation in etcd, leaving fields with no corresponding key
// at their current (default) value.
func FetchWikiConfig(ctx context.Context) {
	log.Printf("fetching wiki configuration from %v", WikiConfigLocation)
	fetchConfigSection(ctx, &Wiki, WikiConfigLocation)
}

// setConfigVal parses str according to field's kind and sets it, the way
// the teacher's reflection-driven setConfigVal does for its own config
// structs; Go has no generics-based config decoder in the pack to reach
// for here, so the teacher's own reflection approach is reused as-is.
func setConfigVal(str string, field reflect.Value) error {
	switch k := field.Kind(); {
	case k == reflect.String:
		field.SetString(str)
	case k >= reflect.Int && k <= reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(str)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		x, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(x)
	case k >= reflect.Uint && k <= reflect.Uint64:
		x, err := strconv.ParseUint(str, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(x)
	case k == reflect.Bool:
		x, err := strconv.ParseBool(str)
		if err != nil {
			return err
		}
		field.SetBool(x)
	}
	return nil
}

// fetchConfigSection fetches one etcd key per exported field of
// configStruct, named location+<FieldName>.
func fetchConfigSection(ctx context.Context, configStruct interface{}, location string) {
	if etcdClient == nil {
		return
	}
	cfg := reflect.ValueOf(configStruct).Elem()
	for i := 0; i < cfg.NumField(); i++ {
		key := cfg.Type().Field(i).Name
		resp, err := etcdClient.Get(ctx, location+key)
		if err != nil {
			log.Printf("error getting key %v: %v", key, err)
			continue
		}
		if len(resp.Kvs) == 0 {
			continue
		}
		if err := setConfigVal(string(resp.Kvs[0].Value), cfg.Field(i)); err != nil {
			log.Printf("error setting config field %v: %v", key, err)
		}
	}
}
