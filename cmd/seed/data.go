package main

import (
	"github.com/google/uuid"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

var seedDays = []struct {
	Name      string
	DayOfWeek int
}{
	{"月曜日", entities.Monday},
	{"火曜日", entities.Tuesday},
	{"水曜日", entities.Wednesday},
	{"木曜日", entities.Thursday},
	{"金曜日", entities.Friday},
	{"土曜日", entities.Saturday},
	{"日曜日", entities.Sunday},
}

var seedCategories = []string{"和食", "うどん", "丼物", "ラーメン", "おでん", "揚げ物", "寿司", "洋食", "カフェ"}

type seedRestaurant struct {
	Name          string
	Category      string
	Description   string
	FloorPrice    int
	MaximumPrice  int
	Opening       string
	Closing       string
	PostalCode    string
	City          string
	StreetAddress string
	PhoneNumber   string
	ClosedOn      []int
	Photos        []string
}

// id is derived from the name so reseeding is idempotent
func (r seedRestaurant) id() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("nagoyameshi:restaurant:"+r.Name)).String()
}

var seedRestaurants = []seedRestaurant{
	{
		Name: "矢場とん 矢場町本店", Category: "揚げ物",
		Description: "名古屋名物みそかつの老舗。秘伝の味噌だれが自慢です。",
		FloorPrice: 1000, MaximumPrice: 3000, Opening: "11:00", Closing: "21:00",
		PostalCode: "460-0011", City: "名古屋市中区", StreetAddress: "大須3-6-18", PhoneNumber: "0522528810",
		Photos: []string{"yabaton_1.jpg", "yabaton_2.jpg"},
	},
	{
		Name: "山本屋本店 栄本町通店", Category: "うどん",
		Description: "土鍋で煮込む味噌煮込うどん。固めの麺が特徴です。",
		FloorPrice: 1200, MaximumPrice: 3500, Opening: "11:00", Closing: "22:00",
		PostalCode: "460-0008", City: "名古屋市中区", StreetAddress: "栄3-12-19", PhoneNumber: "0522410339",
		ClosedOn: []int{entities.Wednesday},
		Photos:   []string{"yamamotoya_1.jpg"},
	},
	{
		Name: "あつた蓬莱軒 本店", Category: "丼物",
		Description: "明治創業のひつまぶし発祥の店。",
		FloorPrice: 3000, MaximumPrice: 8000, Opening: "11:30", Closing: "20:30",
		PostalCode: "456-0043", City: "名古屋市熱田区", StreetAddress: "神戸町503", PhoneNumber: "0526713203",
		ClosedOn: []int{entities.Wednesday},
		Photos:   []string{"horaiken_1.jpg", "horaiken_2.jpg", "horaiken_3.jpg"},
	},
	{
		Name: "世界の山ちゃん 本店", Category: "揚げ物",
		Description: "幻の手羽先で知られる居酒屋。",
		FloorPrice: 2000, MaximumPrice: 4000, Opening: "17:00", Closing: "23:45",
		PostalCode: "460-0008", City: "名古屋市中区", StreetAddress: "栄4-9-6", PhoneNumber: "0522420342",
	},
	{
		Name: "味仙 今池本店", Category: "ラーメン",
		Description: "唐辛子とにんにくが効いた台湾ラーメンの元祖。",
		FloorPrice: 1000, MaximumPrice: 3000, Opening: "17:30", Closing: "23:59",
		PostalCode: "464-0850", City: "名古屋市千種区", StreetAddress: "今池1-12-10", PhoneNumber: "0527331620",
	},
	{
		Name: "コンパル 大須本店", Category: "カフェ",
		Description: "エビフライサンドとアイスコーヒーの喫茶店。",
		FloorPrice: 500, MaximumPrice: 1500, Opening: "08:00", Closing: "19:00",
		PostalCode: "460-0011", City: "名古屋市中区", StreetAddress: "大須3-20-19", PhoneNumber: "0522411883",
		ClosedOn: []int{entities.Monday, entities.Tuesday},
	},
	{
		Name: "大甚 本店", Category: "和食",
		Description: "明治40年創業の大衆酒場。小鉢料理が並びます。",
		FloorPrice: 2000, MaximumPrice: 4000, Opening: "16:00", Closing: "21:00",
		PostalCode: "460-0002", City: "名古屋市中区", StreetAddress: "栄1-5-6", PhoneNumber: "0522313696",
		ClosedOn: []int{entities.Saturday, entities.Sunday},
	},
	{
		Name: "島正", Category: "おでん",
		Description: "八丁味噌で煮込んだどて煮と串かつ。",
		FloorPrice: 3000, MaximumPrice: 5000, Opening: "17:00", Closing: "22:00",
		PostalCode: "460-0003", City: "名古屋市中区", StreetAddress: "錦3-21-18", PhoneNumber: "0522311910",
		ClosedOn: []int{entities.Sunday},
	},
}
